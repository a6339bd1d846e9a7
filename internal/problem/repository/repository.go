// Package repository provides data access layer for the problem catalog.
package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/festy23/ctf_platform/internal/database/database"
	"github.com/festy23/ctf_platform/internal/problem/model"
	writeupModel "github.com/festy23/ctf_platform/internal/writeup/model"
)

// Repository defines the interface for problem data access operations.
type Repository interface {
	// List returns every problem in id order.
	List(ctx context.Context) ([]model.Summary, error)

	// ListByTag returns the problems carrying tag in id order.
	ListByTag(ctx context.Context, tag string) ([]model.Summary, error)

	// GetByID finds a problem by id.
	GetByID(ctx context.Context, id uint) (*model.Problem, error)

	// NameTaken reports whether a problem already uses name.
	NameTaken(ctx context.Context, name string) (bool, error)

	// FlagTaken reports whether a problem already uses flag.
	FlagTaken(ctx context.Context, flag string) (bool, error)

	// Create inserts a problem.
	Create(ctx context.Context, p *model.Problem) error

	// Delete removes a problem with its progress rows and writeups.
	Delete(ctx context.Context, p *model.Problem) error

	// EnsureState creates the UNANSWERED progress row if it is missing
	// and returns the current status.
	EnsureState(ctx context.Context, userID, problemID uint) (model.Status, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new problem repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

func (r *repository) List(ctx context.Context) ([]model.Summary, error) {
	r.logger.Debugw("List called")
	return r.summaries(r.db.WithContext(ctx), "List")
}

func (r *repository) ListByTag(ctx context.Context, tag string) ([]model.Summary, error) {
	r.logger.Debugw("ListByTag called", "tag", tag)
	return r.summaries(r.db.WithContext(ctx).Where("tag = ?", tag), "ListByTag")
}

func (r *repository) summaries(db *gorm.DB, op string) ([]model.Summary, error) {
	var items []model.Summary
	err := db.Model(&model.Problem{}).
		Select("id, tag, name, points").
		Order("id ASC").
		Scan(&items).Error
	if err != nil {
		r.logger.Errorw(op+" database error", "error", err)
		return nil, err
	}
	if items == nil {
		items = []model.Summary{}
	}
	return items, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*model.Problem, error) {
	r.logger.Debugw("GetByID called", "wid", id)

	var p model.Problem
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrProblemNotFound
		}
		r.logger.Errorw("GetByID database error", "wid", id, "error", err)
		return nil, err
	}
	return &p, nil
}

func (r *repository) NameTaken(ctx context.Context, name string) (bool, error) {
	return r.exists(ctx, "name", name)
}

func (r *repository) FlagTaken(ctx context.Context, flag string) (bool, error) {
	return r.exists(ctx, "flag", flag)
}

func (r *repository) exists(ctx context.Context, column, value string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Problem{}).Where(column+" = ?", value).Count(&count).Error
	if err != nil {
		r.logger.Errorw("exists database error", "column", column, "error", err)
		return false, err
	}
	return count > 0, nil
}

// Create inserts a problem. On a unique violation the flag is looked up
// again to tell a duplicate flag from a duplicate name.
func (r *repository) Create(ctx context.Context, p *model.Problem) error {
	r.logger.Debugw("Create called", "name", p.Name, "tag", p.Tag)

	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if database.IsUniqueViolation(err) {
			if taken, _ := r.FlagTaken(ctx, p.Flag); taken {
				return model.ErrDuplicateFlag
			}
			return model.ErrDuplicateName
		}
		r.logger.Errorw("Create database error", "name", p.Name, "error", err)
		return err
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, p *model.Problem) error {
	id := p.ID
	r.logger.Debugw("Delete called", "wid", id)

	return database.RunInTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("problem_id = ?", id).Delete(&model.UserProblemState{}).Error; err != nil {
			r.logger.Errorw("Delete states database error", "wid", id, "error", err)
			return err
		}
		if err := tx.Where("problem_name = ?", p.Name).Delete(&writeupModel.Writeup{}).Error; err != nil {
			r.logger.Errorw("Delete writeups database error", "wid", id, "error", err)
			return err
		}

		result := tx.Delete(&model.Problem{}, id)
		if result.Error != nil {
			r.logger.Errorw("Delete database error", "wid", id, "error", result.Error)
			return result.Error
		}
		if result.RowsAffected == 0 {
			return model.ErrProblemNotFound
		}
		return nil
	})
}

func (r *repository) EnsureState(ctx context.Context, userID, problemID uint) (model.Status, error) {
	r.logger.Debugw("EnsureState called", "user_id", userID, "wid", problemID)

	db := r.db.WithContext(ctx)
	row := model.UserProblemState{UserID: userID, ProblemID: problemID, Status: model.StatusUnanswered}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "problem_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		r.logger.Errorw("EnsureState database error", "user_id", userID, "wid", problemID, "error", err)
		return "", err
	}

	var state model.UserProblemState
	err = db.Where("user_id = ? AND problem_id = ?", userID, problemID).First(&state).Error
	if err != nil {
		r.logger.Errorw("EnsureState database error", "user_id", userID, "wid", problemID, "error", err)
		return "", err
	}
	return state.Status, nil
}
