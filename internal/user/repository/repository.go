// Package repository provides data access layer for user module.
package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/ctf_platform/internal/credential"
	"github.com/festy23/ctf_platform/internal/database/database"
	problemModel "github.com/festy23/ctf_platform/internal/problem/model"
	"github.com/festy23/ctf_platform/internal/user/model"
	writeupModel "github.com/festy23/ctf_platform/internal/writeup/model"
)

// Repository defines the interface for user data access operations.
type Repository interface {
	// GetByID finds a user by id.
	GetByID(ctx context.Context, id uint) (*model.User, error)

	// LockByID finds a user by id and locks the row until the transaction ends.
	LockByID(ctx context.Context, id uint) (*model.User, error)

	// NameTaken reports whether a user other than exceptID uses name.
	NameTaken(ctx context.Context, name string, exceptID uint) (bool, error)

	// EmailTaken reports whether a user other than exceptID uses email.
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)

	// UpdateInformation stores name, real name and id card, and moves the
	// user's writeups from oldName to the new name.
	UpdateInformation(ctx context.Context, user *model.User, oldName string) error

	// UpdatePassword stores a new password hash.
	UpdatePassword(ctx context.Context, id uint, password credential.Credential) error

	// UpdateEmail stores a new email and clears the verified flag.
	UpdateEmail(ctx context.Context, id uint, email string) error

	// DeleteAccount removes the user with its problem progress and writeups.
	DeleteAccount(ctx context.Context, user *model.User) error
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new user repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// GetByID finds a user by id.
func (r *repository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	r.logger.Debugw("GetByID called", "user_id", id)
	return r.first(r.db.WithContext(ctx), id)
}

// LockByID finds a user by id with a row lock.
func (r *repository) LockByID(ctx context.Context, id uint) (*model.User, error) {
	r.logger.Debugw("LockByID called", "user_id", id)
	return r.first(database.ForUpdate(r.db.WithContext(ctx)), id)
}

func (r *repository) first(db *gorm.DB, id uint) (*model.User, error) {
	var user model.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrUserNotFound
		}
		r.logger.Errorw("GetByID database error", "user_id", id, "error", err)
		return nil, err
	}
	return &user, nil
}

// NameTaken reports whether another user uses name.
func (r *repository) NameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	return r.exists(ctx, "name = ? AND id <> ?", name, exceptID)
}

// EmailTaken reports whether another user uses email.
func (r *repository) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	return r.exists(ctx, "email = ? AND id <> ?", email, exceptID)
}

func (r *repository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where(query, args...).Count(&count).Error
	if err != nil {
		r.logger.Errorw("exists database error", "query", query, "error", err)
		return false, err
	}
	return count > 0, nil
}

// UpdateInformation updates the profile columns. On PostgreSQL the writeups
// foreign key cascades the rename on its own; the explicit update covers
// databases without that constraint.
func (r *repository) UpdateInformation(ctx context.Context, user *model.User, oldName string) error {
	r.logger.Debugw("UpdateInformation called", "user_id", user.ID, "name", user.Name)

	db := r.db.WithContext(ctx)
	err := db.Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"name":      user.Name,
		"real_name": user.RealName,
		"id_card":   user.IDCard,
	}).Error
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrNameTaken
		}
		r.logger.Errorw("UpdateInformation database error", "user_id", user.ID, "error", err)
		return err
	}

	if oldName == user.Name {
		return nil
	}
	err = db.Model(&writeupModel.Writeup{}).
		Where("user_name = ?", oldName).
		Update("user_name", user.Name).Error
	if err != nil {
		r.logger.Errorw("UpdateInformation database error", "user_id", user.ID, "error", err)
		return err
	}
	return nil
}

// UpdatePassword stores a new password hash.
func (r *repository) UpdatePassword(ctx context.Context, id uint, password credential.Credential) error {
	r.logger.Debugw("UpdatePassword called", "user_id", id)

	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password_hash", password)
	if result.Error != nil {
		r.logger.Errorw("UpdatePassword database error", "user_id", id, "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// UpdateEmail stores a new email and clears the verified flag.
func (r *repository) UpdateEmail(ctx context.Context, id uint, email string) error {
	r.logger.Debugw("UpdateEmail called", "user_id", id, "email", email)

	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"email":       email,
		"is_verified": false,
	})
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return model.ErrEmailTaken
		}
		r.logger.Errorw("UpdateEmail database error", "user_id", id, "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// DeleteAccount removes dependent rows before the user row.
func (r *repository) DeleteAccount(ctx context.Context, user *model.User) error {
	r.logger.Debugw("DeleteAccount called", "user_id", user.ID)

	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", user.ID).Delete(&problemModel.UserProblemState{}).Error; err != nil {
		r.logger.Errorw("DeleteAccount database error", "user_id", user.ID, "error", err)
		return err
	}
	if err := db.Where("user_name = ?", user.Name).Delete(&writeupModel.Writeup{}).Error; err != nil {
		r.logger.Errorw("DeleteAccount database error", "user_id", user.ID, "error", err)
		return err
	}

	result := db.Delete(&model.User{}, user.ID)
	if result.Error != nil {
		r.logger.Errorw("DeleteAccount database error", "user_id", user.ID, "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
