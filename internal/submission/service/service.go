// Package service evaluates flag submissions.
package service

import (
	"context"
	"crypto/subtle"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/ctf_platform/internal/database/database"
	problemModel "github.com/festy23/ctf_platform/internal/problem/model"
	scoring "github.com/festy23/ctf_platform/internal/scoring/service"
	"github.com/festy23/ctf_platform/internal/submission/model"
	"github.com/festy23/ctf_platform/internal/submission/repository"
)

// Service defines the interface for flag evaluation.
type Service interface {
	// Evaluate checks flag against a problem and awards its points the
	// first time the caller gets it right.
	Evaluate(ctx context.Context, userID, problemID uint, flag string) (*model.Result, error)
}

type service struct {
	db          *gorm.DB
	repo        repository.Repository
	engine      scoring.Engine
	leaderboard scoring.Invalidator
	logger      *zap.SugaredLogger
}

// New creates a new submission service instance.
func New(db *gorm.DB, engine scoring.Engine, leaderboard scoring.Invalidator, logger *zap.SugaredLogger) Service {
	return &service{
		db:          db,
		repo:        repository.New(db, logger),
		engine:      engine,
		leaderboard: leaderboard,
		logger:      logger,
	}
}

// Evaluate never awards a (user, problem) pair twice. The progress row is
// locked and moved to CORRECT with a compare-and-swap before the award
// runs in the same transaction.
//
// A correct guess runs under the scoring lock, which is taken before the
// progress row so the lock order matches every other score change. Wrong
// guesses only touch the progress row.
func (s *service) Evaluate(ctx context.Context, userID, problemID uint, flag string) (*model.Result, error) {
	p, err := s.repo.GetProblem(ctx, problemID)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(flag), []byte(p.Flag)) != 1 {
		return s.reject(ctx, userID, problemID)
	}

	var outcome model.Outcome
	err = s.engine.Run(ctx, func(tx *gorm.DB, eng scoring.Engine) error {
		// The transaction may be re-run; each attempt decides afresh.
		outcome = model.OutcomeAlreadyCorrect
		repo := repository.New(tx, s.logger)

		state, err := repo.LockState(ctx, userID, problemID)
		if err != nil {
			return err
		}
		if state.Status == problemModel.StatusCorrect {
			return nil
		}

		swapped, err := repo.MarkCorrect(ctx, state.ID)
		if err != nil || !swapped {
			return err
		}

		outcome = model.OutcomeCorrect
		return eng.Award(ctx, userID, p.Points)
	})
	if err != nil {
		return nil, err
	}

	if outcome == model.OutcomeCorrect {
		s.leaderboard.Invalidate(ctx)
		s.logger.Infow("problem solved", "user_id", userID, "wid", problemID, "points", p.Points)
		return &model.Result{Outcome: outcome, Points: p.Points}, nil
	}

	s.logger.Debugw("problem already solved", "user_id", userID, "wid", problemID)
	return &model.Result{Outcome: outcome}, nil
}

func (s *service) reject(ctx context.Context, userID, problemID uint) (*model.Result, error) {
	var outcome model.Outcome
	err := database.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		outcome = model.OutcomeIncorrect
		repo := repository.New(tx, s.logger)

		state, err := repo.LockState(ctx, userID, problemID)
		if err != nil {
			return err
		}
		if state.Status == problemModel.StatusCorrect {
			outcome = model.OutcomeAlreadyCorrect
			return nil
		}

		_, err = repo.MarkIncorrect(ctx, state.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debugw("flag rejected", "user_id", userID, "wid", problemID, "outcome", outcome)
	return &model.Result{Outcome: outcome}, nil
}
