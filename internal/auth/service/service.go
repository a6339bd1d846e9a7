// Package service provides registration, email confirmation and login.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/ctf_platform/internal/apperr"
	"github.com/festy23/ctf_platform/internal/auth/model"
	"github.com/festy23/ctf_platform/internal/auth/repository"
	"github.com/festy23/ctf_platform/internal/auth/session"
	"github.com/festy23/ctf_platform/internal/auth/token"
	"github.com/festy23/ctf_platform/internal/credential"
	"github.com/festy23/ctf_platform/internal/mail"
	scoring "github.com/festy23/ctf_platform/internal/scoring/service"
	userModel "github.com/festy23/ctf_platform/internal/user/model"
)

// Service defines the interface for account business logic operations.
type Service interface {
	// Register creates an unverified user and mails a confirmation link.
	Register(ctx context.Context, req *model.RegisterRequest) error

	// Confirm verifies the email named by a confirmation token.
	Confirm(ctx context.Context, rawToken string) error

	// ResendConfirmation mails a new confirmation link to an unverified user.
	ResendConfirmation(ctx context.Context, email string) error

	// Login opens a user session for a client address.
	Login(ctx context.Context, req *model.LoginRequest, addr string) (*model.SessionResponse, error)

	// AdminLogin opens an admin session for a client address.
	AdminLogin(ctx context.Context, req *model.AdminLoginRequest, addr string) (*model.SessionResponse, error)

	// Status describes the caller's session.
	Status(ctx context.Context, p *model.Principal) (*model.StatusResponse, error)

	// Logout revokes a session.
	Logout(ctx context.Context, p model.Principal) error

	// EnsureAdmin creates the named admin unless it already exists.
	EnsureAdmin(ctx context.Context, name, password string) error

	// Authenticate resolves a session token to its principal.
	Authenticate(ctx context.Context, rawToken string) (model.Principal, error)

	// SendConfirmation mails a confirmation link for the user's current email.
	SendConfirmation(user *userModel.User)
}

// Deps are the collaborators of the auth service.
type Deps struct {
	DB          *gorm.DB
	Engine      scoring.Engine
	Leaderboard scoring.Invalidator
	Tokens      *token.Issuer
	Sessions    session.Store
	Throttle    session.Throttle
	Mailer      mail.Dispatcher
}

// Options tune token lifetimes and links.
type Options struct {
	SessionTTL  time.Duration
	ConfirmTTL  time.Duration
	MailTimeout time.Duration
	// PublicURL prefixes confirmation links.
	PublicURL string
}

type service struct {
	deps   Deps
	opts   Options
	repo   repository.Repository
	logger *zap.SugaredLogger
}

// New creates a new auth service instance.
func New(deps Deps, opts Options, logger *zap.SugaredLogger) Service {
	return &service{
		deps:   deps,
		opts:   opts,
		repo:   repository.New(deps.DB, logger),
		logger: logger,
	}
}

// Register creates the user and recomputes user ranks in one transaction.
// The confirmation mail is sent only after commit.
func (s *service) Register(ctx context.Context, req *model.RegisterRequest) error {
	if req.Password != req.Password2 {
		return apperr.ErrInvalidParams
	}

	user := &userModel.User{
		Name:     req.Name,
		Email:    req.Email,
		RealName: req.RealName,
		IDCard:   req.IDCard,
	}
	if err := user.Password.Set(req.Password); err != nil {
		if errors.Is(err, credential.ErrEmpty) || errors.Is(err, credential.ErrTooLong) {
			return apperr.ErrInvalidParams
		}
		return err
	}

	err := s.deps.Engine.Run(ctx, func(tx *gorm.DB, eng scoring.Engine) error {
		txRepo := repository.New(tx, s.logger)

		taken, err := txRepo.EmailTaken(ctx, user.Email)
		if err != nil {
			return err
		}
		if taken {
			return model.ErrEmailTaken
		}

		taken, err = txRepo.NameTaken(ctx, user.Name)
		if err != nil {
			return err
		}
		if taken {
			return model.ErrNameTaken
		}

		if err := txRepo.CreateUser(ctx, user); err != nil {
			return err
		}
		return eng.RecomputeUserRanks(ctx)
	})
	if err != nil {
		return err
	}

	s.logger.Infow("user registered", "user_id", user.ID, "name", user.Name)
	s.SendConfirmation(user)
	return nil
}

// SendConfirmation mails a confirmation link in the background.
func (s *service) SendConfirmation(user *userModel.User) {
	raw, err := s.deps.Tokens.IssueConfirmation(user.ID, user.Email, s.opts.ConfirmTTL)
	if err != nil {
		s.logger.Errorw("issue confirmation token failed", "user_id", user.ID, "error", err)
		return
	}
	confirmURL := s.opts.PublicURL + "/confirm/" + raw
	mail.SendAsync(s.deps.Mailer, s.logger, s.opts.MailTimeout, user.Email, user.Name, confirmURL)
}

// Confirm verifies the email named by a confirmation token. A token issued
// for an address the user has since replaced is rejected.
func (s *service) Confirm(ctx context.Context, rawToken string) error {
	userID, email, err := s.deps.Tokens.ParseConfirmation(rawToken)
	if err != nil {
		return model.ErrTokenInvalid
	}

	verified, err := s.repo.MarkVerified(ctx, userID, email)
	if err != nil {
		return err
	}
	if !verified {
		user, err := s.repo.FindUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, model.ErrAccountNotFound) {
				return model.ErrTokenInvalid
			}
			return err
		}
		if user.Email != email {
			return model.ErrTokenInvalid
		}
		return model.ErrAlreadyVerified
	}

	s.logger.Infow("email confirmed", "user_id", userID)
	s.deps.Leaderboard.Invalidate(ctx)
	return nil
}

// ResendConfirmation mails a new confirmation link to an unverified user.
func (s *service) ResendConfirmation(ctx context.Context, email string) error {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return model.ErrAlreadyVerified
	}

	s.SendConfirmation(user)
	return nil
}

// Login opens a user session. Every failed password check counts against
// the client address.
func (s *service) Login(ctx context.Context, req *model.LoginRequest, addr string) (*model.SessionResponse, error) {
	if err := s.checkThrottle(ctx, addr); err != nil {
		return nil, err
	}

	user, err := s.repo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			s.recordFailure(ctx, addr)
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Password.Verify(req.Password) {
		s.recordFailure(ctx, addr)
		return nil, model.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, model.ErrNotVerified
	}

	resp, err := s.openSession(ctx, model.RoleUser, user.ID, user.Name)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("user logged in", "user_id", user.ID, "addr", addr)
	return resp, nil
}

// AdminLogin opens an admin session.
func (s *service) AdminLogin(ctx context.Context, req *model.AdminLoginRequest, addr string) (*model.SessionResponse, error) {
	if err := s.checkThrottle(ctx, addr); err != nil {
		return nil, err
	}

	admin, err := s.repo.FindAdminByName(ctx, req.Name)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			s.recordFailure(ctx, addr)
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if !admin.Password.Verify(req.Password) {
		s.recordFailure(ctx, addr)
		return nil, model.ErrInvalidCredentials
	}

	resp, err := s.openSession(ctx, model.RoleAdmin, admin.ID, admin.Name)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("admin logged in", "admin_id", admin.ID, "addr", addr)
	return resp, nil
}

// checkThrottle rejects blocked addresses. An unreachable store never
// blocks a login.
func (s *service) checkThrottle(ctx context.Context, addr string) error {
	blocked, err := s.deps.Throttle.Blocked(ctx, addr)
	if err != nil {
		s.logger.Warnw("login throttle unavailable", "addr", addr, "error", err)
		return nil
	}
	if blocked {
		return model.ErrTooManyAttempts
	}
	return nil
}

func (s *service) recordFailure(ctx context.Context, addr string) {
	if err := s.deps.Throttle.Fail(ctx, addr); err != nil {
		s.logger.Warnw("record login failure failed", "addr", addr, "error", err)
	}
}

func (s *service) openSession(ctx context.Context, role model.Role, id uint, name string) (*model.SessionResponse, error) {
	p, err := s.deps.Sessions.Create(ctx, role, id, s.opts.SessionTTL)
	if err != nil {
		s.logger.Errorw("create session failed", "role", role, "id", id, "error", err)
		return nil, model.ErrSessionStore
	}

	raw, expires, err := s.deps.Tokens.IssueSession(p, s.opts.SessionTTL)
	if err != nil {
		return nil, err
	}

	return &model.SessionResponse{
		Token:     raw,
		Name:      name,
		Role:      role,
		ExpiresIn: int64(time.Until(expires).Seconds()),
	}, nil
}

// Status describes the caller's session. p is nil for anonymous callers.
func (s *service) Status(ctx context.Context, p *model.Principal) (*model.StatusResponse, error) {
	if p == nil {
		return &model.StatusResponse{LoggedIn: false}, nil
	}

	switch p.Role {
	case model.RoleUser:
		user, err := s.repo.FindUserByID(ctx, p.ID)
		if err != nil {
			if errors.Is(err, model.ErrAccountNotFound) {
				return &model.StatusResponse{LoggedIn: false}, nil
			}
			return nil, err
		}
		return &model.StatusResponse{LoggedIn: true, Role: p.Role, Name: user.Name}, nil
	case model.RoleAdmin:
		return &model.StatusResponse{LoggedIn: true, Role: p.Role}, nil
	default:
		return &model.StatusResponse{LoggedIn: false}, nil
	}
}

// Logout revokes a session.
func (s *service) Logout(ctx context.Context, p model.Principal) error {
	if err := s.deps.Sessions.Delete(ctx, p.SessionID); err != nil {
		s.logger.Errorw("delete session failed", "principal", p.String(), "error", err)
		return model.ErrSessionStore
	}

	s.logger.Infow("logged out", "principal", p.String())
	return nil
}

// EnsureAdmin creates the named admin unless it already exists. The
// password of an existing admin is left untouched.
func (s *service) EnsureAdmin(ctx context.Context, name, password string) error {
	_, err := s.repo.FindAdminByName(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrAccountNotFound) {
		return err
	}

	admin := &model.Admin{Name: name}
	if err := admin.Password.Set(password); err != nil {
		return err
	}
	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, model.ErrNameTaken) {
			return nil
		}
		return err
	}

	s.logger.Infow("admin account created", "name", name)
	return nil
}

// Authenticate resolves a session token to its principal. Invalid tokens
// and dead sessions yield ErrNotLoggedIn.
func (s *service) Authenticate(ctx context.Context, rawToken string) (model.Principal, error) {
	claimed, err := s.deps.Tokens.ParseSession(rawToken)
	if err != nil {
		return model.Principal{}, model.ErrNotLoggedIn
	}

	stored, err := s.deps.Sessions.Get(ctx, claimed.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return model.Principal{}, model.ErrNotLoggedIn
		}
		s.logger.Errorw("load session failed", "error", err)
		return model.Principal{}, model.ErrSessionStore
	}

	if stored.Role != claimed.Role || stored.ID != claimed.ID {
		return model.Principal{}, model.ErrNotLoggedIn
	}
	return stored, nil
}
