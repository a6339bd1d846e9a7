package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/festy23/ctf_platform/internal/scoring/model"
	"github.com/festy23/ctf_platform/internal/scoring/service"
)

type mockLeaderboard struct {
	mock.Mock
}

func (m *mockLeaderboard) Users(ctx context.Context) ([]model.UserStanding, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserStanding), args.Error(1)
}

func (m *mockLeaderboard) Teams(ctx context.Context) ([]model.TeamStanding, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TeamStanding), args.Error(1)
}

func (m *mockLeaderboard) Export(ctx context.Context, kind model.Kind) ([]byte, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockLeaderboard) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

var _ service.Leaderboard = (*mockLeaderboard)(nil)

func setupRouter(lb service.Leaderboard) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(lb, zap.NewNop().Sugar())
	r := gin.New()
	r.GET("/rank/:type", h.Rank)
	r.GET("/admin/rank/:type/export", h.Export)
	return r
}

type envelope struct {
	Errno  string          `json:"errno"`
	Errmsg string          `json:"errmsg"`
	Data   json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestHandler_Rank(t *testing.T) {
	one, two := 1, 2
	team := "red"

	t.Run("users", func(t *testing.T) {
		lb := new(mockLeaderboard)
		lb.On("Users", mock.Anything).Return([]model.UserStanding{
			{Rank: &one, Name: "alice", Points: 100, Team: &team},
			{Rank: &two, Name: "bob", Points: 50},
		}, nil)

		w := httptest.NewRecorder()
		setupRouter(lb).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rank/users", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "0", body.Errno)
		var standings []model.UserStanding
		require.NoError(t, json.Unmarshal(body.Data, &standings))
		assert.Len(t, standings, 2)
		assert.Equal(t, "alice", standings[0].Name)
		lb.AssertExpectations(t)
	})

	t.Run("teams", func(t *testing.T) {
		lb := new(mockLeaderboard)
		lb.On("Teams", mock.Anything).Return([]model.TeamStanding{{Rank: &one, Name: "red", Points: 10, Num: 2}}, nil)

		w := httptest.NewRecorder()
		setupRouter(lb).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rank/teams", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"num":2`)
		lb.AssertExpectations(t)
	})

	t.Run("unknown type", func(t *testing.T) {
		lb := new(mockLeaderboard)

		w := httptest.NewRecorder()
		setupRouter(lb).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rank/admins", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "4103", decode(t, w).Errno)
		lb.AssertNotCalled(t, "Users", mock.Anything)
	})

	t.Run("database error", func(t *testing.T) {
		lb := new(mockLeaderboard)
		lb.On("Users", mock.Anything).Return(nil, errors.New("connection reset"))

		w := httptest.NewRecorder()
		setupRouter(lb).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rank/users", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decode(t, w)
		assert.Equal(t, "4001", body.Errno)
		assert.NotContains(t, body.Errmsg, "connection reset")
	})
}

func TestHandler_Export(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		lb := new(mockLeaderboard)
		lb.On("Export", mock.Anything, model.KindTeams).Return([]byte("PK-xlsx"), nil)

		w := httptest.NewRecorder()
		setupRouter(lb).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/rank/teams/export", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "rank_teams_")
		assert.Equal(t, "PK-xlsx", w.Body.String())
	})

	t.Run("unknown type", func(t *testing.T) {
		lb := new(mockLeaderboard)

		w := httptest.NewRecorder()
		setupRouter(lb).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/rank/x/export", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
