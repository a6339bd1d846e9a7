package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/ctf_platform/internal/apperr"
	"github.com/festy23/ctf_platform/internal/auth/model"
	"github.com/festy23/ctf_platform/internal/auth/session"
	"github.com/festy23/ctf_platform/internal/auth/token"
	"github.com/festy23/ctf_platform/internal/database/dbtest"
	scoring "github.com/festy23/ctf_platform/internal/scoring/service"
	userModel "github.com/festy23/ctf_platform/internal/user/model"
)

type sentMail struct {
	to, name, url string
}

type fakeMailer struct {
	sent chan sentMail
}

func (f *fakeMailer) SendVerification(_ context.Context, to, name, confirmURL string) error {
	f.sent <- sentMail{to: to, name: name, url: confirmURL}
	return nil
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.calls++
}

type fixture struct {
	svc     Service
	db      *gorm.DB
	redis   *miniredis.Miniredis
	tokens  *token.Issuer
	mailer  *fakeMailer
	invalid *countingInvalidator
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := zap.NewNop().Sugar()
	f := &fixture{
		db:      db,
		redis:   mr,
		tokens:  token.NewIssuer("test-secret"),
		mailer:  &fakeMailer{sent: make(chan sentMail, 4)},
		invalid: &countingInvalidator{},
	}
	f.svc = New(Deps{
		DB:          db,
		Engine:      scoring.NewEngine(db, "competition", logger),
		Leaderboard: f.invalid,
		Tokens:      f.tokens,
		Sessions:    session.NewStore(client),
		Throttle:    session.NewThrottle(client, 3, 10*time.Minute),
		Mailer:      f.mailer,
	}, Options{
		SessionTTL:  time.Hour,
		ConfirmTTL:  time.Hour,
		MailTimeout: time.Second,
		PublicURL:   "http://ctf.test",
	}, logger)
	return f
}

func (f *fixture) awaitMail(t *testing.T) sentMail {
	t.Helper()
	select {
	case m := <-f.mailer.sent:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("no confirmation mail sent")
		return sentMail{}
	}
}

func registerRequest(name string) *model.RegisterRequest {
	return &model.RegisterRequest{
		Name:      name,
		Email:     name + "@example.com",
		Password:  "secret123",
		Password2: "secret123",
		RealName:  "Real " + name,
		IDCard:    "11010519491231002X",
	}
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates unverified ranked user and mails a link", func(t *testing.T) {
		f := setup(t)
		dbtest.CreateUser(t, f.db, "leader", 100)

		require.NoError(t, f.svc.Register(ctx, registerRequest("alice")))

		var u userModel.User
		require.NoError(t, f.db.Where("name = ?", "alice").First(&u).Error)
		assert.False(t, u.IsVerified)
		assert.True(t, u.Password.Verify("secret123"))
		require.NotNil(t, u.Rank)
		assert.Equal(t, 2, *u.Rank)

		m := f.awaitMail(t)
		assert.Equal(t, "alice@example.com", m.to)
		assert.True(t, strings.HasPrefix(m.url, "http://ctf.test/confirm/"))
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := setup(t)
		dbtest.CreateUser(t, f.db, "alice", 0)

		req := registerRequest("other")
		req.Email = "alice@example.com"
		assert.ErrorIs(t, f.svc.Register(ctx, req), model.ErrEmailTaken)
	})

	t.Run("duplicate name", func(t *testing.T) {
		f := setup(t)
		dbtest.CreateUser(t, f.db, "alice", 0)

		req := registerRequest("alice")
		req.Email = "fresh@example.com"
		assert.ErrorIs(t, f.svc.Register(ctx, req), model.ErrNameTaken)
	})

	t.Run("passwords differ", func(t *testing.T) {
		f := setup(t)
		req := registerRequest("alice")
		req.Password2 = "different"

		assert.ErrorIs(t, f.svc.Register(ctx, req), apperr.ErrInvalidParams)
	})
}

func TestService_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("verifies the user", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, f.svc.Register(ctx, registerRequest("alice")))
		link := f.awaitMail(t).url
		raw := strings.TrimPrefix(link, "http://ctf.test/confirm/")

		require.NoError(t, f.svc.Confirm(ctx, raw))

		var u userModel.User
		require.NoError(t, f.db.Where("name = ?", "alice").First(&u).Error)
		assert.True(t, u.IsVerified)
		assert.Equal(t, 1, f.invalid.calls)

		assert.ErrorIs(t, f.svc.Confirm(ctx, raw), model.ErrAlreadyVerified)
	})

	t.Run("garbage token", func(t *testing.T) {
		f := setup(t)
		assert.ErrorIs(t, f.svc.Confirm(ctx, "not-a-token"), model.ErrTokenInvalid)
	})

	t.Run("token for a replaced email", func(t *testing.T) {
		f := setup(t)
		u := dbtest.CreateUser(t, f.db, "alice", 0)
		require.NoError(t, f.db.Model(u).Update("is_verified", false).Error)
		raw, err := f.tokens.IssueConfirmation(u.ID, "old@example.com", time.Hour)
		require.NoError(t, err)

		assert.ErrorIs(t, f.svc.Confirm(ctx, raw), model.ErrTokenInvalid)
		assert.False(t, dbtest.ReloadUser(t, f.db, u.ID).IsVerified)
	})
}

func TestService_ResendConfirmation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := dbtest.CreateUser(t, f.db, "alice", 0)

	assert.ErrorIs(t, f.svc.ResendConfirmation(ctx, u.Email), model.ErrAlreadyVerified)
	assert.ErrorIs(t, f.svc.ResendConfirmation(ctx, "nobody@example.com"), model.ErrAccountNotFound)

	require.NoError(t, f.db.Model(u).Update("is_verified", false).Error)
	require.NoError(t, f.svc.ResendConfirmation(ctx, u.Email))
	assert.Equal(t, u.Email, f.awaitMail(t).to)
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("opens a session the middleware accepts", func(t *testing.T) {
		f := setup(t)
		u := dbtest.CreateUser(t, f.db, "alice", 0)

		resp, err := f.svc.Login(ctx, &model.LoginRequest{Email: u.Email, Password: "password"}, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, "alice", resp.Name)
		assert.Equal(t, model.RoleUser, resp.Role)
		assert.InDelta(t, time.Hour.Seconds(), float64(resp.ExpiresIn), 5)

		p, err := f.svc.Authenticate(ctx, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, p.ID)
		assert.True(t, p.IsUser())
	})

	t.Run("unverified user", func(t *testing.T) {
		f := setup(t)
		u := dbtest.CreateUser(t, f.db, "alice", 0)
		require.NoError(t, f.db.Model(u).Update("is_verified", false).Error)

		_, err := f.svc.Login(ctx, &model.LoginRequest{Email: u.Email, Password: "password"}, "10.0.0.1")
		assert.ErrorIs(t, err, model.ErrNotVerified)
	})

	t.Run("blocks an address after repeated failures", func(t *testing.T) {
		f := setup(t)
		u := dbtest.CreateUser(t, f.db, "alice", 0)
		bad := &model.LoginRequest{Email: u.Email, Password: "wrong"}

		for i := 0; i < 3; i++ {
			_, err := f.svc.Login(ctx, bad, "10.0.0.1")
			assert.ErrorIs(t, err, model.ErrInvalidCredentials)
		}

		_, err := f.svc.Login(ctx, &model.LoginRequest{Email: u.Email, Password: "password"}, "10.0.0.1")
		assert.ErrorIs(t, err, model.ErrTooManyAttempts)

		_, err = f.svc.Login(ctx, &model.LoginRequest{Email: u.Email, Password: "password"}, "10.0.0.2")
		assert.NoError(t, err, "other addresses are unaffected")

		f.redis.FastForward(11 * time.Minute)
		_, err = f.svc.Login(ctx, &model.LoginRequest{Email: u.Email, Password: "password"}, "10.0.0.1")
		assert.NoError(t, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Login(ctx, &model.LoginRequest{Email: "x@example.com", Password: "p"}, "10.0.0.1")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("redis down does not block login but sessions fail", func(t *testing.T) {
		f := setup(t)
		u := dbtest.CreateUser(t, f.db, "alice", 0)
		f.redis.Close()

		_, err := f.svc.Login(ctx, &model.LoginRequest{Email: u.Email, Password: "password"}, "10.0.0.1")
		assert.ErrorIs(t, err, model.ErrSessionStore)
	})
}

func TestService_AdminLoginAndLogout(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	require.NoError(t, f.svc.EnsureAdmin(ctx, "root", "rootpass"))
	require.NoError(t, f.svc.EnsureAdmin(ctx, "root", "ignored"), "second call is a no-op")

	_, err := f.svc.AdminLogin(ctx, &model.AdminLoginRequest{Name: "root", Password: "ignored"}, "10.0.0.1")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	resp, err := f.svc.AdminLogin(ctx, &model.AdminLoginRequest{Name: "root", Password: "rootpass"}, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, resp.Role)

	p, err := f.svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())

	status, err := f.svc.Status(ctx, &p)
	require.NoError(t, err)
	assert.True(t, status.LoggedIn)
	assert.Equal(t, model.RoleAdmin, status.Role)

	require.NoError(t, f.svc.Logout(ctx, p))
	_, err = f.svc.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, model.ErrNotLoggedIn)
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("forged role is rejected", func(t *testing.T) {
		f := setup(t)
		u := dbtest.CreateUser(t, f.db, "alice", 0)
		resp, err := f.svc.Login(ctx, &model.LoginRequest{Email: u.Email, Password: "password"}, "10.0.0.1")
		require.NoError(t, err)
		p, err := f.svc.Authenticate(ctx, resp.Token)
		require.NoError(t, err)

		forged, _, err := f.tokens.IssueSession(model.Principal{Role: model.RoleAdmin, ID: u.ID, SessionID: p.SessionID}, time.Hour)
		require.NoError(t, err)

		_, err = f.svc.Authenticate(ctx, forged)
		assert.ErrorIs(t, err, model.ErrNotLoggedIn)
	})

	t.Run("store unavailable", func(t *testing.T) {
		f := setup(t)
		raw, _, err := f.tokens.IssueSession(model.Principal{Role: model.RoleUser, ID: 1, SessionID: "sid"}, time.Hour)
		require.NoError(t, err)
		f.redis.Close()

		_, err = f.svc.Authenticate(ctx, raw)
		assert.ErrorIs(t, err, model.ErrSessionStore)
	})

	t.Run("anonymous status", func(t *testing.T) {
		f := setup(t)
		status, err := f.svc.Status(ctx, nil)
		require.NoError(t, err)
		assert.False(t, status.LoggedIn)
	})
}
