// Package repository provides data access layer for scoring module.
package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/ctf_platform/internal/database/database"
	"github.com/festy23/ctf_platform/internal/scoring/model"
	teamModel "github.com/festy23/ctf_platform/internal/team/model"
	userModel "github.com/festy23/ctf_platform/internal/user/model"
)

// scoringLockKey is the PostgreSQL advisory lock serializing score changes.
const scoringLockKey int64 = 0x63746601

// Repository defines the interface for scoring data access operations.
type Repository interface {
	// LockScoring serializes score-changing transactions. It must be taken
	// before any user or team row lock and is held until the transaction ends.
	LockScoring(ctx context.Context) error

	// LockUser loads a user and locks its row until the transaction ends.
	LockUser(ctx context.Context, userID uint) (*userModel.User, error)

	// AddUserPoints increments a user's points.
	AddUserPoints(ctx context.Context, userID uint, delta int) error

	// LockTeam loads a team and locks its row until the transaction ends.
	LockTeam(ctx context.Context, teamID uint) (*teamModel.Team, error)

	// SumTeam returns the total points and the number of members of a team.
	SumTeam(ctx context.Context, teamID uint) (points, num int, err error)

	// UpdateTeamTotals stores derived points and member count on a team.
	UpdateTeamTotals(ctx context.Context, teamID uint, points, num int) error

	// RecomputeUserRanks reassigns the rank of every user.
	RecomputeUserRanks(ctx context.Context, fn model.RankFunc) error

	// RecomputeTeamRanks reassigns the rank of every team.
	RecomputeTeamRanks(ctx context.Context, fn model.RankFunc) error

	// ListUsers returns verified users ordered by points.
	ListUsers(ctx context.Context) ([]model.UserStanding, error)

	// ListTeams returns teams ordered by points.
	ListTeams(ctx context.Context) ([]model.TeamStanding, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new scoring repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// LockScoring serializes score-changing transactions on PostgreSQL. SQLite
// already serializes write transactions.
func (r *repository) LockScoring(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if !database.IsPostgres(db) {
		return nil
	}
	if err := db.Exec("SELECT pg_advisory_xact_lock(?)", scoringLockKey).Error; err != nil {
		r.logger.Errorw("LockScoring database error", "error", err)
		return err
	}
	return nil
}

// LockUser loads a user and locks its row until the transaction ends.
func (r *repository) LockUser(ctx context.Context, userID uint) (*userModel.User, error) {
	r.logger.Debugw("LockUser called", "user_id", userID)

	var user userModel.User
	err := database.ForUpdate(r.db.WithContext(ctx)).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrUserNotFound
		}
		r.logger.Errorw("LockUser database error", "user_id", userID, "error", err)
		return nil, err
	}

	return &user, nil
}

// AddUserPoints increments a user's points.
func (r *repository) AddUserPoints(ctx context.Context, userID uint, delta int) error {
	r.logger.Debugw("AddUserPoints called", "user_id", userID, "delta", delta)

	result := r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", delta))
	if result.Error != nil {
		r.logger.Errorw("AddUserPoints database error", "user_id", userID, "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// LockTeam loads a team and locks its row until the transaction ends.
func (r *repository) LockTeam(ctx context.Context, teamID uint) (*teamModel.Team, error) {
	r.logger.Debugw("LockTeam called", "team_id", teamID)

	var team teamModel.Team
	err := database.ForUpdate(r.db.WithContext(ctx)).First(&team, teamID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrTeamNotFound
		}
		r.logger.Errorw("LockTeam database error", "team_id", teamID, "error", err)
		return nil, err
	}

	return &team, nil
}

// SumTeam returns the total points and the number of members of a team.
func (r *repository) SumTeam(ctx context.Context, teamID uint) (int, int, error) {
	r.logger.Debugw("SumTeam called", "team_id", teamID)

	var result struct {
		Points int `gorm:"column:points"`
		Num    int `gorm:"column:num"`
	}
	err := r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Select("COALESCE(SUM(points), 0) AS points, COUNT(*) AS num").
		Where("team_id = ?", teamID).
		Scan(&result).Error
	if err != nil {
		r.logger.Errorw("SumTeam database error", "team_id", teamID, "error", err)
		return 0, 0, err
	}

	return result.Points, result.Num, nil
}

// UpdateTeamTotals stores derived points and member count on a team.
func (r *repository) UpdateTeamTotals(ctx context.Context, teamID uint, points, num int) error {
	r.logger.Debugw("UpdateTeamTotals called", "team_id", teamID, "points", points, "num", num)

	err := r.db.WithContext(ctx).
		Model(&teamModel.Team{}).
		Where("id = ?", teamID).
		Updates(map[string]interface{}{"points": points, "num": num}).Error
	if err != nil {
		r.logger.Errorw("UpdateTeamTotals database error", "team_id", teamID, "error", err)
		return err
	}

	return nil
}

// RecomputeUserRanks reassigns the rank of every user.
func (r *repository) RecomputeUserRanks(ctx context.Context, fn model.RankFunc) error {
	return r.recompute(ctx, "users", fn)
}

// RecomputeTeamRanks reassigns the rank of every team.
func (r *repository) RecomputeTeamRanks(ctx context.Context, fn model.RankFunc) error {
	return r.recompute(ctx, "teams", fn)
}

// recompute ranks a whole table in one statement. table and fn never come
// from user input.
func (r *repository) recompute(ctx context.Context, table string, fn model.RankFunc) error {
	r.logger.Debugw("recompute ranks called", "table", table, "func", fn)

	if fn != model.RankCompetition && fn != model.RankDense {
		return fmt.Errorf("unsupported rank function %q", fn)
	}

	if err := r.LockScoring(ctx); err != nil {
		return err
	}

	query := fmt.Sprintf(
		"UPDATE %[1]s SET rank = ranked.rnk FROM "+
			"(SELECT id, %[2]s() OVER (ORDER BY points DESC) AS rnk FROM %[1]s) AS ranked "+
			"WHERE %[1]s.id = ranked.id",
		table, fn,
	)
	if err := r.db.WithContext(ctx).Exec(query).Error; err != nil {
		r.logger.Errorw("recompute ranks database error", "table", table, "error", err)
		return err
	}

	return nil
}

// ListUsers returns verified users ordered by points.
func (r *repository) ListUsers(ctx context.Context) ([]model.UserStanding, error) {
	r.logger.Debugw("ListUsers called")

	var standings []model.UserStanding
	err := r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Select("rank, name, points, team_name").
		Where("is_verified = ?", true).
		Order("points DESC, id ASC").
		Scan(&standings).Error
	if err != nil {
		r.logger.Errorw("ListUsers database error", "error", err)
		return nil, err
	}

	if standings == nil {
		standings = []model.UserStanding{}
	}

	r.logger.Debugw("ListUsers completed", "count", len(standings))
	return standings, nil
}

// ListTeams returns teams ordered by points.
func (r *repository) ListTeams(ctx context.Context) ([]model.TeamStanding, error) {
	r.logger.Debugw("ListTeams called")

	var standings []model.TeamStanding
	err := r.db.WithContext(ctx).
		Model(&teamModel.Team{}).
		Select("rank, name, points, num").
		Order("points DESC, id ASC").
		Scan(&standings).Error
	if err != nil {
		r.logger.Errorw("ListTeams database error", "error", err)
		return nil, err
	}

	if standings == nil {
		standings = []model.TeamStanding{}
	}

	r.logger.Debugw("ListTeams completed", "count", len(standings))
	return standings, nil
}
