package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authModel "github.com/festy23/ctf_platform/internal/auth/model"
	"github.com/festy23/ctf_platform/internal/database/dbtest"
	"github.com/festy23/ctf_platform/internal/middleware"
	"github.com/festy23/ctf_platform/internal/response"
	scoring "github.com/festy23/ctf_platform/internal/scoring/service"
	"github.com/festy23/ctf_platform/internal/team/handler"
	"github.com/festy23/ctf_platform/internal/team/service"
)

type tokenAuthenticator map[string]authModel.Principal

func (a tokenAuthenticator) Authenticate(_ context.Context, raw string) (authModel.Principal, error) {
	p, ok := a[raw]
	if !ok {
		return authModel.Principal{}, authModel.ErrNotLoggedIn
	}
	return p, nil
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context) {}

func setupIntegration(t *testing.T) (*gin.Engine, *gorm.DB, tokenAuthenticator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := dbtest.New(t)
	logger := zap.NewNop().Sugar()

	engine := scoring.NewEngine(db, "competition", logger)
	svc := service.New(db, engine, noopInvalidator{}, logger)
	tokens := tokenAuthenticator{}

	r := gin.New()
	RegisterRoutes(r, handler.New(svc, logger), middleware.NewAuth(tokens, "session", logger))
	return r, db, tokens
}

func login(t *testing.T, db *gorm.DB, tokens tokenAuthenticator, name string, points int) string {
	t.Helper()
	u := dbtest.CreateUser(t, db, name, points)
	tokens[name] = authModel.Principal{Role: authModel.RoleUser, ID: u.ID, SessionID: name}
	return name
}

func do(r http.Handler, method, token string, body interface{}) (*httptest.ResponseRecorder, response.Envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, "/team", &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env response.Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestIntegration_TeamLifecycle(t *testing.T) {
	r, db, tokens := setupIntegration(t)
	alice := login(t, db, tokens, "alice", 20)
	bob := login(t, db, tokens, "bob", 10)

	w, _ := do(r, http.MethodPost, alice, map[string]string{"action": "create_team", "create_name": "red", "create_code": "c0de"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := do(r, http.MethodPost, bob, map[string]string{"action": "join_team", "join_name": "red", "code": "bad"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "4004", string(env.Errno))

	w, _ = do(r, http.MethodPost, bob, map[string]string{"action": "join_team", "join_name": "red", "code": "c0de"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = do(r, http.MethodGet, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, float64(30), data["points"])
	assert.Equal(t, float64(2), data["num"])
	assert.Equal(t, false, data["is_captain"])

	w, _ = do(r, http.MethodDelete, alice, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "captain with members cannot quit")

	w, _ = do(r, http.MethodPost, alice, map[string]string{"action": "trans_team", "captain_name": "bob"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = do(r, http.MethodDelete, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "left the team", env.Errmsg)

	w, env = do(r, http.MethodDelete, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "team dissolved", env.Errmsg)

	w, _ = do(r, http.MethodGet, bob, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestIntegration_RequiresUserSession(t *testing.T) {
	r, _, tokens := setupIntegration(t)
	tokens["admin"] = authModel.Principal{Role: authModel.RoleAdmin, ID: 1, SessionID: "admin"}

	w, env := do(r, http.MethodGet, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "4101", string(env.Errno))

	w, _ = do(r, http.MethodGet, "admin", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
