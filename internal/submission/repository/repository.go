// Package repository provides data access layer for flag submissions.
package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/festy23/ctf_platform/internal/database/database"
	problemModel "github.com/festy23/ctf_platform/internal/problem/model"
)

// Repository defines the interface for progress row access. Status updates
// never move a row out of CORRECT.
type Repository interface {
	// GetProblem finds a problem by id.
	GetProblem(ctx context.Context, id uint) (*problemModel.Problem, error)

	// LockState creates the progress row if it is missing, then loads and
	// locks it until the transaction ends.
	LockState(ctx context.Context, userID, problemID uint) (*problemModel.UserProblemState, error)

	// MarkCorrect moves a row to CORRECT and reports whether this call did it.
	MarkCorrect(ctx context.Context, stateID uint) (bool, error)

	// MarkIncorrect moves a row to INCORRECT unless it is CORRECT and
	// reports whether the row was changed.
	MarkIncorrect(ctx context.Context, stateID uint) (bool, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new submission repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

func (r *repository) GetProblem(ctx context.Context, id uint) (*problemModel.Problem, error) {
	r.logger.Debugw("GetProblem called", "wid", id)

	var p problemModel.Problem
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, problemModel.ErrProblemNotFound
		}
		r.logger.Errorw("GetProblem database error", "wid", id, "error", err)
		return nil, err
	}
	return &p, nil
}

func (r *repository) LockState(ctx context.Context, userID, problemID uint) (*problemModel.UserProblemState, error) {
	r.logger.Debugw("LockState called", "user_id", userID, "wid", problemID)

	db := r.db.WithContext(ctx)
	row := problemModel.UserProblemState{UserID: userID, ProblemID: problemID, Status: problemModel.StatusUnanswered}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "problem_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		r.logger.Errorw("LockState database error", "user_id", userID, "wid", problemID, "error", err)
		return nil, err
	}

	var state problemModel.UserProblemState
	err = database.ForUpdate(db).
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		First(&state).Error
	if err != nil {
		r.logger.Errorw("LockState database error", "user_id", userID, "wid", problemID, "error", err)
		return nil, err
	}
	return &state, nil
}

func (r *repository) MarkCorrect(ctx context.Context, stateID uint) (bool, error) {
	return r.transition(ctx, stateID, problemModel.StatusCorrect)
}

func (r *repository) MarkIncorrect(ctx context.Context, stateID uint) (bool, error) {
	return r.transition(ctx, stateID, problemModel.StatusIncorrect)
}

// transition is a compare-and-swap guarded by status <> CORRECT.
func (r *repository) transition(ctx context.Context, stateID uint, to problemModel.Status) (bool, error) {
	r.logger.Debugw("transition called", "state_id", stateID, "to", to)

	result := r.db.WithContext(ctx).
		Model(&problemModel.UserProblemState{}).
		Where("id = ? AND status <> ?", stateID, problemModel.StatusCorrect).
		Update("status", to)
	if result.Error != nil {
		r.logger.Errorw("transition database error", "state_id", stateID, "to", to, "error", result.Error)
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
