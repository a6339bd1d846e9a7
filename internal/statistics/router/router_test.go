package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/festy23/ctf_platform/internal/apperr"
	authModel "github.com/festy23/ctf_platform/internal/auth/model"
	"github.com/festy23/ctf_platform/internal/database/dbtest"
	"github.com/festy23/ctf_platform/internal/middleware"
	"github.com/festy23/ctf_platform/internal/response"
)

type tokenAuthenticator map[string]authModel.Principal

func (a tokenAuthenticator) Authenticate(_ context.Context, raw string) (authModel.Principal, error) {
	p, ok := a[raw]
	if !ok {
		return authModel.Principal{}, authModel.ErrNotLoggedIn
	}
	return p, nil
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop().Sugar()
	tokens := tokenAuthenticator{
		"admin": {Role: authModel.RoleAdmin, ID: 1, SessionID: "a"},
		"user":  {Role: authModel.RoleUser, ID: 1, SessionID: "u"},
	}

	router := gin.New()
	RegisterRoutes(router, dbtest.New(t), middleware.NewAuth(tokens, "session", logger), logger)
	return router
}

func get(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errnoOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return string(env.Errno)
}

func TestRegisterRoutes(t *testing.T) {
	t.Run("admin reaches both routes", func(t *testing.T) {
		router := setupRouter(t)

		assert.Equal(t, http.StatusOK, get(router, "/admin/statistics/problems", "admin").Code)
		assert.Equal(t, http.StatusOK, get(router, "/admin/statistics/overview", "admin").Code)
	})

	t.Run("anonymous caller needs an admin session", func(t *testing.T) {
		router := setupRouter(t)

		w := get(router, "/admin/statistics/problems", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, string(apperr.AdminErr), errnoOf(t, w))
	})

	t.Run("user session is not enough", func(t *testing.T) {
		router := setupRouter(t)

		w := get(router, "/admin/statistics/overview", "user")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, string(apperr.AdminErr), errnoOf(t, w))
	})

	t.Run("non-existent route returns 404", func(t *testing.T) {
		router := setupRouter(t)

		assert.Equal(t, http.StatusNotFound, get(router, "/admin/statistics/nonexistent", "admin").Code)
	})
}
