// Package service provides the scoring and ranking engine and the leaderboards.
package service

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/ctf_platform/internal/database/database"
	"github.com/festy23/ctf_platform/internal/scoring/model"
	"github.com/festy23/ctf_platform/internal/scoring/repository"
)

// Engine updates points and keeps ranks consistent with them.
//
// Every method runs in its own transaction, or in a savepoint when the
// engine is bound to an outer transaction with WithTx, so a points change
// and the rank recomputation it triggers commit together.
type Engine interface {
	// Award adds delta points to a user and to the user's team.
	Award(ctx context.Context, userID uint, delta int) error

	// AdjustTeam re-derives a team's points and member count from its roster.
	// delta is the change the caller expects and is only used to detect drift.
	AdjustTeam(ctx context.Context, teamID uint, delta int) error

	// RecomputeUserRanks reassigns every user's rank.
	RecomputeUserRanks(ctx context.Context) error

	// RecomputeTeamRanks reassigns every team's rank.
	RecomputeTeamRanks(ctx context.Context) error

	// WithTx returns an engine that works inside tx.
	WithTx(tx *gorm.DB) Engine

	// Run executes fn in a transaction that already holds the scoring lock.
	// Callers that lock user or team rows before changing scores must use it
	// so every score change acquires locks in the same order.
	Run(ctx context.Context, fn func(tx *gorm.DB, e Engine) error) error
}

type engine struct {
	db     *gorm.DB
	inTx   bool
	rank   model.RankFunc
	logger *zap.SugaredLogger
}

// NewEngine creates a new scoring engine. rankMode is "competition" or "dense".
func NewEngine(db *gorm.DB, rankMode string, logger *zap.SugaredLogger) Engine {
	return &engine{
		db:     db,
		rank:   model.RankFuncFor(rankMode),
		logger: logger,
	}
}

func (e *engine) WithTx(tx *gorm.DB) Engine {
	return &engine{db: tx, inTx: true, rank: e.rank, logger: e.logger}
}

func (e *engine) Run(ctx context.Context, fn func(tx *gorm.DB, e Engine) error) error {
	return e.run(ctx, func(tx *gorm.DB, repo repository.Repository) error {
		if err := repo.LockScoring(ctx); err != nil {
			return err
		}
		return fn(tx, e.WithTx(tx))
	})
}

func (e *engine) run(ctx context.Context, fn func(tx *gorm.DB, repo repository.Repository) error) error {
	body := func(tx *gorm.DB) error {
		return fn(tx, repository.New(tx, e.logger))
	}
	if e.inTx {
		return e.db.WithContext(ctx).Transaction(body)
	}
	return database.RunInTx(ctx, e.db, body)
}

// Award adds delta points to a user and to the user's team.
func (e *engine) Award(ctx context.Context, userID uint, delta int) error {
	if delta < 0 {
		return model.ErrNegativeDelta
	}

	var teamID *uint
	err := e.run(ctx, func(_ *gorm.DB, repo repository.Repository) error {
		if err := repo.LockScoring(ctx); err != nil {
			return err
		}

		user, err := repo.LockUser(ctx, userID)
		if err != nil {
			return err
		}

		if err := repo.AddUserPoints(ctx, userID, delta); err != nil {
			return err
		}

		if err := repo.RecomputeUserRanks(ctx, e.rank); err != nil {
			return err
		}

		if user.TeamID == nil {
			return nil
		}
		teamID = user.TeamID
		return e.adjustTeam(ctx, repo, *user.TeamID, delta)
	})
	if err != nil {
		return err
	}

	e.logger.Infow("points awarded", "user_id", userID, "delta", delta, "team_id", teamID)
	return nil
}

// AdjustTeam re-derives a team's points and member count from its roster.
func (e *engine) AdjustTeam(ctx context.Context, teamID uint, delta int) error {
	return e.run(ctx, func(_ *gorm.DB, repo repository.Repository) error {
		if err := repo.LockScoring(ctx); err != nil {
			return err
		}
		return e.adjustTeam(ctx, repo, teamID, delta)
	})
}

func (e *engine) adjustTeam(ctx context.Context, repo repository.Repository, teamID uint, delta int) error {
	team, err := repo.LockTeam(ctx, teamID)
	if err != nil {
		return err
	}

	points, num, err := repo.SumTeam(ctx, teamID)
	if err != nil {
		return err
	}

	if points-team.Points != delta {
		e.logger.Warnw("team points drifted from expected delta",
			"team_id", teamID,
			"stored", team.Points,
			"summed", points,
			"expected_delta", delta,
		)
	}

	if err := repo.UpdateTeamTotals(ctx, teamID, points, num); err != nil {
		return err
	}

	return repo.RecomputeTeamRanks(ctx, e.rank)
}

func (e *engine) RecomputeUserRanks(ctx context.Context) error {
	return e.run(ctx, func(_ *gorm.DB, repo repository.Repository) error {
		return repo.RecomputeUserRanks(ctx, e.rank)
	})
}

func (e *engine) RecomputeTeamRanks(ctx context.Context) error {
	return e.run(ctx, func(_ *gorm.DB, repo repository.Repository) error {
		return repo.RecomputeTeamRanks(ctx, e.rank)
	})
}
