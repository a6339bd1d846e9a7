package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authModel "github.com/festy23/ctf_platform/internal/auth/model"
	"github.com/festy23/ctf_platform/internal/database/dbtest"
	"github.com/festy23/ctf_platform/internal/middleware"
	"github.com/festy23/ctf_platform/internal/scoring/cache"
	scoringHandler "github.com/festy23/ctf_platform/internal/scoring/handler"
	scoringModel "github.com/festy23/ctf_platform/internal/scoring/model"
	scoringRepository "github.com/festy23/ctf_platform/internal/scoring/repository"
	scoringRouter "github.com/festy23/ctf_platform/internal/scoring/router"
	scoring "github.com/festy23/ctf_platform/internal/scoring/service"
	"github.com/festy23/ctf_platform/internal/submission/handler"
	"github.com/festy23/ctf_platform/internal/submission/model"
	"github.com/festy23/ctf_platform/internal/submission/service"
	userModel "github.com/festy23/ctf_platform/internal/user/model"
)

type tokenAuthenticator map[string]authModel.Principal

func (a tokenAuthenticator) Authenticate(_ context.Context, raw string) (authModel.Principal, error) {
	p, ok := a[raw]
	if !ok {
		return authModel.Principal{}, authModel.ErrNotLoggedIn
	}
	return p, nil
}

type envelope[T any] struct {
	Errno  string `json:"errno"`
	Errmsg string `json:"errmsg"`
	Data   T      `json:"data"`
}

// SubmissionFlowSuite drives submissions and the leaderboard through HTTP.
type SubmissionFlowSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	alice  *userModel.User
	bob    *userModel.User
	wid    uint
}

func (s *SubmissionFlowSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop().Sugar()

	s.db = dbtest.New(s.T())
	s.alice = dbtest.CreateUser(s.T(), s.db, "alice", 0)
	s.bob = dbtest.CreateUser(s.T(), s.db, "bob", 0)
	s.wid = dbtest.CreateProblem(s.T(), s.db, "rop", "flag{rop}", 100).ID

	tokens := tokenAuthenticator{
		"alice": {Role: authModel.RoleUser, ID: s.alice.ID, SessionID: "a"},
		"bob":   {Role: authModel.RoleUser, ID: s.bob.ID, SessionID: "b"},
		"admin": {Role: authModel.RoleAdmin, ID: 1, SessionID: "root"},
	}
	auth := middleware.NewAuth(tokens, "session", logger)

	engine := scoring.NewEngine(s.db, "competition", logger)
	leaderboard := scoring.NewLeaderboard(scoringRepository.New(s.db, logger), cache.Nop(), time.Minute, logger)

	s.router = gin.New()
	RegisterRoutes(s.router, handler.New(service.New(s.db, engine, leaderboard, logger), logger), auth)
	scoringRouter.RegisterRoutes(s.router, scoringHandler.New(leaderboard, logger), auth)
}

func (s *SubmissionFlowSuite) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *SubmissionFlowSuite) submit(token, flag string) (*httptest.ResponseRecorder, envelope[model.Result]) {
	w := s.do(http.MethodPost, fmt.Sprintf("/problem/%d", s.wid), token, `{"flag":"`+flag+`"}`)
	var env envelope[model.Result]
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (s *SubmissionFlowSuite) userStandings() []scoringModel.UserStanding {
	w := s.do(http.MethodGet, "/rank/users", "bob", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var env envelope[[]scoringModel.UserStanding]
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	return env.Data
}

func (s *SubmissionFlowSuite) TestWrongFlagIsRejected() {
	w, env := s.submit("alice", "flag{nope}")

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("4103", env.Errno)
	s.Equal("wrong flag", env.Errmsg)
	s.Equal(0, dbtest.ReloadUser(s.T(), s.db, s.alice.ID).Points)
}

func (s *SubmissionFlowSuite) TestCorrectFlagAwardsOnce() {
	w, env := s.submit("alice", "flag{rop}")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(model.OutcomeCorrect, env.Data.Outcome)
	s.Equal(100, env.Data.Points)

	w, env = s.submit("alice", "flag{rop}")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(model.OutcomeAlreadyCorrect, env.Data.Outcome)

	s.Equal(100, dbtest.ReloadUser(s.T(), s.db, s.alice.ID).Points)

	standings := s.userStandings()
	s.Require().NotEmpty(standings)
	s.Equal("alice", standings[0].Name)
	s.Equal(100, standings[0].Points)
	s.Require().NotNil(standings[0].Rank)
	s.Equal(1, *standings[0].Rank)
}

func (s *SubmissionFlowSuite) TestAccessRules() {
	w, _ := s.submit("", "flag{rop}")
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.submit("admin", "flag{rop}")
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/problem/999", "alice", `{"flag":"flag{rop}"}`)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/problem/%d", s.wid), "alice", `{}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func TestSubmissionFlowSuite(t *testing.T) {
	suite.Run(t, new(SubmissionFlowSuite))
}
