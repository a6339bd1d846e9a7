// Package repository provides data access layer for auth module.
package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/ctf_platform/internal/auth/model"
	"github.com/festy23/ctf_platform/internal/database/database"
	userModel "github.com/festy23/ctf_platform/internal/user/model"
)

// Repository defines the interface for account data access operations.
type Repository interface {
	// FindAdminByName finds an admin by name.
	FindAdminByName(ctx context.Context, name string) (*model.Admin, error)

	// CreateAdmin inserts an admin.
	CreateAdmin(ctx context.Context, admin *model.Admin) error

	// FindUserByEmail finds a user by email.
	FindUserByEmail(ctx context.Context, email string) (*userModel.User, error)

	// FindUserByID finds a user by id.
	FindUserByID(ctx context.Context, id uint) (*userModel.User, error)

	// NameTaken reports whether a user already uses name.
	NameTaken(ctx context.Context, name string) (bool, error)

	// EmailTaken reports whether a user already uses email.
	EmailTaken(ctx context.Context, email string) (bool, error)

	// CreateUser inserts a user.
	CreateUser(ctx context.Context, user *userModel.User) error

	// MarkVerified verifies the user when email is still the user's address.
	// It reports false when nothing was pending.
	MarkVerified(ctx context.Context, id uint, email string) (bool, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new auth repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// FindAdminByName finds an admin by name.
func (r *repository) FindAdminByName(ctx context.Context, name string) (*model.Admin, error) {
	r.logger.Debugw("FindAdminByName called", "name", name)

	var admin model.Admin
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrAccountNotFound
		}
		r.logger.Errorw("FindAdminByName database error", "name", name, "error", err)
		return nil, err
	}

	return &admin, nil
}

// CreateAdmin inserts an admin.
func (r *repository) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	r.logger.Debugw("CreateAdmin called", "name", admin.Name)

	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrNameTaken
		}
		r.logger.Errorw("CreateAdmin database error", "name", admin.Name, "error", err)
		return err
	}

	return nil
}

// FindUserByEmail finds a user by email.
func (r *repository) FindUserByEmail(ctx context.Context, email string) (*userModel.User, error) {
	r.logger.Debugw("FindUserByEmail called", "email", email)

	var user userModel.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrAccountNotFound
		}
		r.logger.Errorw("FindUserByEmail database error", "email", email, "error", err)
		return nil, err
	}

	return &user, nil
}

// FindUserByID finds a user by id.
func (r *repository) FindUserByID(ctx context.Context, id uint) (*userModel.User, error) {
	r.logger.Debugw("FindUserByID called", "user_id", id)

	var user userModel.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrAccountNotFound
		}
		r.logger.Errorw("FindUserByID database error", "user_id", id, "error", err)
		return nil, err
	}

	return &user, nil
}

// NameTaken reports whether a user already uses name.
func (r *repository) NameTaken(ctx context.Context, name string) (bool, error) {
	return r.exists(ctx, "name = ?", name)
}

// EmailTaken reports whether a user already uses email.
func (r *repository) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *repository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userModel.User{}).Where(query, arg).Count(&count).Error
	if err != nil {
		r.logger.Errorw("exists database error", "query", query, "error", err)
		return false, err
	}
	return count > 0, nil
}

// CreateUser inserts a user.
func (r *repository) CreateUser(ctx context.Context, user *userModel.User) error {
	r.logger.Debugw("CreateUser called", "name", user.Name, "email", user.Email)

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrEmailTaken
		}
		r.logger.Errorw("CreateUser database error", "name", user.Name, "error", err)
		return err
	}

	return nil
}

// MarkVerified verifies the user when email is still the user's address.
func (r *repository) MarkVerified(ctx context.Context, id uint, email string) (bool, error) {
	r.logger.Debugw("MarkVerified called", "user_id", id)

	result := r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Where("id = ? AND email = ? AND is_verified = ?", id, email, false).
		Update("is_verified", true)
	if result.Error != nil {
		r.logger.Errorw("MarkVerified database error", "user_id", id, "error", result.Error)
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
