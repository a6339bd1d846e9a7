package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/festy23/ctf_platform/internal/apperr"
)

func perform(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestOK(t *testing.T) {
	w, env := perform(t, func(c *gin.Context) {
		OK(c, gin.H{"points": 100})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, apperr.OK, env.Errno)
	assert.Equal(t, "OK", env.Errmsg)
	assert.JSONEq(t, `{"errno":"0","errmsg":"OK","data":{"points":100}}`, w.Body.String())
}

func TestOKMessage_OmitsNilData(t *testing.T) {
	w, env := perform(t, func(c *gin.Context) {
		OKMessage(c, "correct", nil)
	})

	assert.Equal(t, "correct", env.Errmsg)
	assert.NotContains(t, w.Body.String(), "data")
}

func TestError_ClassifiedError(t *testing.T) {
	sentinel := apperr.New(apperr.KindConflict, apperr.DataExist, "team name already exists")

	w, env := perform(t, func(c *gin.Context) {
		Error(c, zap.NewNop().Sugar(), fmt.Errorf("create: %w", sentinel))
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperr.DataExist, env.Errno)
	assert.Equal(t, "team name already exists", env.Errmsg)
}

func TestError_UnclassifiedErrorIsHidden(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(core).Sugar()

	w, env := perform(t, func(c *gin.Context) {
		Error(c, logger, errors.New("pq: relation users does not exist"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperr.DBErr, env.Errno)
	assert.NotContains(t, w.Body.String(), "relation")
	assert.Equal(t, 1, logs.Len())
}

func TestParam(t *testing.T) {
	w, env := perform(t, func(c *gin.Context) {
		Param(c, "flag is required")
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperr.ParamErr, env.Errno)
	assert.Equal(t, "flag is required", env.Errmsg)
}

func TestBindAction(t *testing.T) {
	gin.SetMode(gin.TestMode)
	type renameRequest struct {
		Name string `json:"name" binding:"required"`
	}

	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		action, ok := BindAction(c)
		if !ok {
			return
		}
		var req renameRequest
		if !BindBody(c, &req) {
			return
		}
		OK(c, gin.H{"action": action, "name": req.Name})
	})

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantBody string
	}{
		{"action and body", `{"action":"rename","name":"red"}`, http.StatusOK, `"name":"red"`},
		{"missing action", `{"name":"red"}`, http.StatusBadRequest, `"errno":"4103"`},
		{"missing field", `{"action":"rename"}`, http.StatusBadRequest, `"errmsg":"invalid parameters"`},
		{"not json", `action=rename`, http.StatusBadRequest, `"errno":"4103"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestParamID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/problem/:wid", func(c *gin.Context) {
		id, ok := ParamID(c, "wid")
		if !ok {
			return
		}
		OK(c, id)
	})

	tests := []struct {
		path     string
		wantCode int
	}{
		{"/problem/12", http.StatusOK},
		{"/problem/0", http.StatusBadRequest},
		{"/problem/-3", http.StatusBadRequest},
		{"/problem/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
