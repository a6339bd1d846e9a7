// Package repository provides data access layer for statistics module.
package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	problemModel "github.com/festy23/ctf_platform/internal/problem/model"
	"github.com/festy23/ctf_platform/internal/statistics/model"
)

// Repository defines the interface for statistics data access operations.
type Repository interface {
	// GetProblemsStatistics returns solve and attempt counts for every problem.
	GetProblemsStatistics(ctx context.Context) ([]model.ProblemStatistics, error)

	// GetOverview returns competition-wide totals.
	GetOverview(ctx context.Context) (*model.Overview, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new statistics repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// GetProblemsStatistics returns statistics for all problems, most solved first.
func (r *repository) GetProblemsStatistics(ctx context.Context) ([]model.ProblemStatistics, error) {
	r.logger.Debugw("GetProblemsStatistics called")

	var stats []model.ProblemStatistics

	err := r.db.WithContext(ctx).
		Table("problems").
		Select(`
			problems.id as wid,
			problems.name,
			problems.tag,
			problems.points,
			COALESCE(SUM(CASE WHEN user_problem_states.status = ? THEN 1 ELSE 0 END), 0) as solves,
			COALESCE(SUM(CASE WHEN user_problem_states.status IN ? THEN 1 ELSE 0 END), 0) as attempts
		`, problemModel.StatusCorrect, []problemModel.Status{problemModel.StatusCorrect, problemModel.StatusIncorrect}).
		Joins("LEFT JOIN user_problem_states ON user_problem_states.problem_id = problems.id").
		Group("problems.id, problems.name, problems.tag, problems.points").
		Order("solves DESC, problems.id ASC").
		Scan(&stats).Error

	if err != nil {
		r.logger.Errorw("GetProblemsStatistics database error", "error", err)
		return nil, err
	}

	if stats == nil {
		stats = []model.ProblemStatistics{}
	}

	r.logger.Debugw("GetProblemsStatistics completed", "count", len(stats))
	return stats, nil
}

// GetOverview returns competition-wide totals.
func (r *repository) GetOverview(ctx context.Context) (*model.Overview, error) {
	r.logger.Debugw("GetOverview called")

	var result struct {
		Users         int64 `gorm:"column:users"`
		VerifiedUsers int64 `gorm:"column:verified_users"`
		Teams         int64 `gorm:"column:teams"`
		Problems      int64 `gorm:"column:problems"`
		CorrectSolves int64 `gorm:"column:correct_solves"`
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM users) as users,
			(SELECT COUNT(*) FROM users WHERE is_verified = ?) as verified_users,
			(SELECT COUNT(*) FROM teams) as teams,
			(SELECT COUNT(*) FROM problems) as problems,
			(SELECT COUNT(*) FROM user_problem_states WHERE status = ?) as correct_solves
	`, true, problemModel.StatusCorrect).Scan(&result).Error

	if err != nil {
		r.logger.Errorw("GetOverview database error", "error", err)
		return nil, err
	}

	overview := &model.Overview{
		Users:         int(result.Users),
		VerifiedUsers: int(result.VerifiedUsers),
		Teams:         int(result.Teams),
		Problems:      int(result.Problems),
		CorrectSolves: int(result.CorrectSolves),
	}

	r.logger.Debugw("GetOverview completed", "users", overview.Users, "correct_solves", overview.CorrectSolves)
	return overview, nil
}
