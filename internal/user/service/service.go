// Package service provides business logic layer for user module.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/ctf_platform/internal/apperr"
	authModel "github.com/festy23/ctf_platform/internal/auth/model"
	"github.com/festy23/ctf_platform/internal/credential"
	"github.com/festy23/ctf_platform/internal/database/database"
	scoring "github.com/festy23/ctf_platform/internal/scoring/service"
	"github.com/festy23/ctf_platform/internal/user/model"
	"github.com/festy23/ctf_platform/internal/user/repository"
)

// Confirmer mails a confirmation link for the user's current email.
type Confirmer interface {
	SendConfirmation(user *model.User)
}

// SessionRevoker ends a session.
type SessionRevoker interface {
	Logout(ctx context.Context, p authModel.Principal) error
}

// TeamDetacher removes a user from its team inside an open engine transaction.
type TeamDetacher interface {
	Detach(ctx context.Context, tx *gorm.DB, eng scoring.Engine, userID uint) error
}

// Service defines the interface for user business logic operations.
type Service interface {
	// Profile returns the caller's profile.
	Profile(ctx context.Context, userID uint) (*model.ProfileResponse, error)

	// ChangeInformation updates name, real name and id card.
	ChangeInformation(ctx context.Context, userID uint, req *model.ChangeInformationRequest) error

	// ChangePassword replaces the password after checking the old one.
	ChangePassword(ctx context.Context, userID uint, req *model.ChangePasswordRequest) error

	// ChangeEmail replaces the email and mails a new confirmation link.
	ChangeEmail(ctx context.Context, userID uint, req *model.ChangeEmailRequest) error

	// Delete removes the caller's account and revokes its session.
	Delete(ctx context.Context, p authModel.Principal) error
}

// Deps are the collaborators of the user service.
type Deps struct {
	DB          *gorm.DB
	Engine      scoring.Engine
	Leaderboard scoring.Invalidator
	Teams       TeamDetacher
	Confirmer   Confirmer
	Sessions    SessionRevoker
}

type service struct {
	deps   Deps
	repo   repository.Repository
	logger *zap.SugaredLogger
}

// New creates a new user service instance.
func New(deps Deps, logger *zap.SugaredLogger) Service {
	return &service{
		deps:   deps,
		repo:   repository.New(deps.DB, logger),
		logger: logger,
	}
}

// Profile returns the caller's profile.
func (s *service) Profile(ctx context.Context, userID uint) (*model.ProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToProfile(), nil
}

// ChangeInformation renames the user together with its writeups.
func (s *service) ChangeInformation(ctx context.Context, userID uint, req *model.ChangeInformationRequest) error {
	err := database.RunInTx(ctx, s.deps.DB, func(tx *gorm.DB) error {
		repo := repository.New(tx, s.logger)

		user, err := repo.LockByID(ctx, userID)
		if err != nil {
			return err
		}

		taken, err := repo.NameTaken(ctx, req.Name, userID)
		if err != nil {
			return err
		}
		if taken {
			return model.ErrNameTaken
		}

		oldName := user.Name
		user.Name = req.Name
		user.RealName = req.RealName
		user.IDCard = req.IDCard
		return repo.UpdateInformation(ctx, user, oldName)
	})
	if err != nil {
		return err
	}

	s.deps.Leaderboard.Invalidate(ctx)
	s.logger.Infow("profile updated", "user_id", userID, "name", req.Name)
	return nil
}

// ChangePassword replaces the password after checking the old one.
func (s *service) ChangePassword(ctx context.Context, userID uint, req *model.ChangePasswordRequest) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Password.Verify(req.OldPassword) {
		return model.ErrWrongPassword
	}

	var password credential.Credential
	if err := password.Set(req.NewPassword); err != nil {
		if errors.Is(err, credential.ErrEmpty) || errors.Is(err, credential.ErrTooLong) {
			return apperr.ErrInvalidParams
		}
		return err
	}

	if err := s.repo.UpdatePassword(ctx, userID, password); err != nil {
		return err
	}

	s.logger.Infow("password changed", "user_id", userID)
	return nil
}

// ChangeEmail commits the new unverified address before the mail goes out.
func (s *service) ChangeEmail(ctx context.Context, userID uint, req *model.ChangeEmailRequest) error {
	var user *model.User
	err := database.RunInTx(ctx, s.deps.DB, func(tx *gorm.DB) error {
		repo := repository.New(tx, s.logger)

		locked, err := repo.LockByID(ctx, userID)
		if err != nil {
			return err
		}
		if locked.Email == req.Email {
			return model.ErrSameEmail
		}

		taken, err := repo.EmailTaken(ctx, req.Email, userID)
		if err != nil {
			return err
		}
		if taken {
			return model.ErrEmailTaken
		}

		if err := repo.UpdateEmail(ctx, userID, req.Email); err != nil {
			return err
		}
		locked.Email = req.Email
		locked.IsVerified = false
		user = locked
		return nil
	})
	if err != nil {
		return err
	}

	s.deps.Confirmer.SendConfirmation(user)
	s.logger.Infow("email changed", "user_id", userID)
	return nil
}

// Delete detaches the user from its team, removes the account and
// recomputes both rankings in one transaction under the scoring lock.
func (s *service) Delete(ctx context.Context, p authModel.Principal) error {
	err := s.deps.Engine.Run(ctx, func(tx *gorm.DB, eng scoring.Engine) error {
		repo := repository.New(tx, s.logger)

		user, err := repo.LockByID(ctx, p.ID)
		if err != nil {
			return err
		}

		if err := s.deps.Teams.Detach(ctx, tx, eng, user.ID); err != nil {
			return err
		}

		if err := repo.DeleteAccount(ctx, user); err != nil {
			return err
		}

		if err := eng.RecomputeUserRanks(ctx); err != nil {
			return err
		}
		return eng.RecomputeTeamRanks(ctx)
	})
	if err != nil {
		return err
	}

	s.deps.Leaderboard.Invalidate(ctx)
	if err := s.deps.Sessions.Logout(ctx, p); err != nil {
		s.logger.Warnw("failed to revoke session of deleted account", "user_id", p.ID, "error", err)
	}

	s.logger.Infow("account deleted", "user_id", p.ID)
	return nil
}
