// Package repository provides data access layer for writeups.
package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/ctf_platform/internal/database/database"
	problemModel "github.com/festy23/ctf_platform/internal/problem/model"
	userModel "github.com/festy23/ctf_platform/internal/user/model"
	"github.com/festy23/ctf_platform/internal/writeup/model"
)

// Repository defines the interface for writeup data access operations.
type Repository interface {
	// List returns every writeup, newest first.
	List(ctx context.Context) ([]model.Writeup, error)

	// ListByAuthor returns the writeups of one author, newest first.
	ListByAuthor(ctx context.Context, userName string) ([]model.Writeup, error)

	// GetByID finds a writeup by id.
	GetByID(ctx context.Context, id uint) (*model.Writeup, error)

	// LockByID finds a writeup by id and locks it until the transaction ends.
	LockByID(ctx context.Context, id uint) (*model.Writeup, error)

	// AuthorName returns the current name of a user.
	AuthorName(ctx context.Context, userID uint) (string, error)

	// ProblemExists reports whether a problem with the name exists.
	ProblemExists(ctx context.Context, name string) (bool, error)

	// Create inserts a writeup.
	Create(ctx context.Context, w *model.Writeup) error

	// Update stores the editable columns of a writeup.
	Update(ctx context.Context, w *model.Writeup) error

	// Delete removes a writeup.
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new writeup repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

func (r *repository) List(ctx context.Context) ([]model.Writeup, error) {
	r.logger.Debugw("List called")
	return r.find(r.db.WithContext(ctx))
}

func (r *repository) ListByAuthor(ctx context.Context, userName string) ([]model.Writeup, error) {
	r.logger.Debugw("ListByAuthor called", "author", userName)
	return r.find(r.db.WithContext(ctx).Where("user_name = ?", userName))
}

func (r *repository) find(db *gorm.DB) ([]model.Writeup, error) {
	writeups := []model.Writeup{}
	if err := db.Order("updated_at DESC, id DESC").Find(&writeups).Error; err != nil {
		r.logger.Errorw("List database error", "error", err)
		return nil, err
	}
	return writeups, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*model.Writeup, error) {
	r.logger.Debugw("GetByID called", "id", id)
	return r.first(r.db.WithContext(ctx), id)
}

func (r *repository) LockByID(ctx context.Context, id uint) (*model.Writeup, error) {
	r.logger.Debugw("LockByID called", "id", id)
	return r.first(database.ForUpdate(r.db.WithContext(ctx)), id)
}

func (r *repository) first(db *gorm.DB, id uint) (*model.Writeup, error) {
	var w model.Writeup
	if err := db.First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrWriteupNotFound
		}
		r.logger.Errorw("GetByID database error", "id", id, "error", err)
		return nil, err
	}
	return &w, nil
}

func (r *repository) AuthorName(ctx context.Context, userID uint) (string, error) {
	r.logger.Debugw("AuthorName called", "user_id", userID)

	var user userModel.User
	err := r.db.WithContext(ctx).Select("id, name").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", userModel.ErrUserNotFound
		}
		r.logger.Errorw("AuthorName database error", "user_id", userID, "error", err)
		return "", err
	}
	return user.Name, nil
}

func (r *repository) ProblemExists(ctx context.Context, name string) (bool, error) {
	r.logger.Debugw("ProblemExists called", "problem_name", name)

	var count int64
	err := r.db.WithContext(ctx).Model(&problemModel.Problem{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		r.logger.Errorw("ProblemExists database error", "problem_name", name, "error", err)
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Create(ctx context.Context, w *model.Writeup) error {
	r.logger.Debugw("Create called", "author", w.UserName, "problem_name", w.ProblemName)

	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return model.ErrProblemNotFound
		}
		r.logger.Errorw("Create database error", "author", w.UserName, "error", err)
		return err
	}
	return nil
}

func (r *repository) Update(ctx context.Context, w *model.Writeup) error {
	r.logger.Debugw("Update called", "id", w.ID)

	result := r.db.WithContext(ctx).Model(w).Select("problem_name", "tag", "name", "content", "updated_at").Updates(w)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return model.ErrProblemNotFound
		}
		r.logger.Errorw("Update database error", "id", w.ID, "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrWriteupNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	r.logger.Debugw("Delete called", "id", id)

	result := r.db.WithContext(ctx).Delete(&model.Writeup{}, id)
	if result.Error != nil {
		r.logger.Errorw("Delete database error", "id", id, "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrWriteupNotFound
	}
	return nil
}
