package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	authModel "github.com/festy23/ctf_platform/internal/auth/model"
)

func setupTestRouter(logger *zap.SugaredLogger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger(logger))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	r.GET("/error", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
	})
	r.GET("/server-error", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	})
	r.GET("/me", func(c *gin.Context) {
		SetPrincipal(c, authModel.Principal{Role: authModel.RoleUser, ID: 9, SessionID: "s"})
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestLogger_Middleware(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		expectedStatus int
		level          zapcore.Level
	}{
		{
			name:           "successful request",
			path:           "/test",
			expectedStatus: http.StatusOK,
			level:          zapcore.InfoLevel,
		},
		{
			name:           "client error",
			path:           "/error",
			expectedStatus: http.StatusBadRequest,
			level:          zapcore.WarnLevel,
		},
		{
			name:           "server error",
			path:           "/server-error",
			expectedStatus: http.StatusInternalServerError,
			level:          zapcore.ErrorLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			router := setupTestRouter(zap.New(core).Sugar())

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			require.Equal(t, 1, logs.Len())
			assert.Equal(t, tt.level, logs.All()[0].Level)
		})
	}
}

func TestLogger_LogsRequestDetails(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := setupTestRouter(zap.New(core).Sugar())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test?param=value", nil)
	req.Header.Set("User-Agent", "test-agent")
	router.ServeHTTP(w, req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/test", fields["path"])
	assert.Equal(t, "param=value", fields["query"])
	assert.Equal(t, "test-agent", fields["user_agent"])
	assert.Equal(t, "GET", fields["method"])
}

func TestLogger_RequestID(t *testing.T) {
	router := setupTestRouter(zaptest.NewLogger(t).Sugar())

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})

	t.Run("propagated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		router.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})
}

func TestLogger_LogsPrincipal(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := setupTestRouter(zap.New(core).Sugar())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "user:9", logs.All()[0].ContextMap()["principal"])
}
