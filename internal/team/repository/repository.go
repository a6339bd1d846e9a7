// Package repository provides data access layer for team module.
package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/ctf_platform/internal/database/database"
	teamModel "github.com/festy23/ctf_platform/internal/team/model"
	userModel "github.com/festy23/ctf_platform/internal/user/model"
)

// Repository defines the interface for team data access operations.
// Lock methods hold row locks until the surrounding transaction ends.
type Repository interface {
	// GetUser finds a user by id.
	GetUser(ctx context.Context, userID uint) (*userModel.User, error)

	// LockUser loads a user by id and locks its row.
	LockUser(ctx context.Context, userID uint) (*userModel.User, error)

	// LockUserByName loads a user by name and locks its row.
	LockUserByName(ctx context.Context, name string) (*userModel.User, error)

	// LockTeam loads a team by id and locks its row.
	LockTeam(ctx context.Context, teamID uint) (*teamModel.Team, error)

	// LockTeamByName loads a team by name and locks its row.
	LockTeamByName(ctx context.Context, name string) (*teamModel.Team, error)

	// GetByID finds a team by id.
	GetByID(ctx context.Context, teamID uint) (*teamModel.Team, error)

	// NameTaken reports whether a team already uses name.
	NameTaken(ctx context.Context, name string) (bool, error)

	// Create inserts a team.
	Create(ctx context.Context, team *teamModel.Team) error

	// Delete removes a team.
	Delete(ctx context.Context, teamID uint) error

	// Rename changes a team's name and the cached name on its members.
	Rename(ctx context.Context, teamID uint, name string) error

	// Join puts a user on a team.
	Join(ctx context.Context, userID uint, team *teamModel.Team, captain bool) error

	// Clear takes a user off its team.
	Clear(ctx context.Context, userID uint) error

	// SetCaptain makes userID the only captain of teamID.
	SetCaptain(ctx context.Context, teamID, userID uint) error

	// CountMembers returns the number of users on a team.
	CountMembers(ctx context.Context, teamID uint) (int, error)

	// Members returns a team's roster, captain first.
	Members(ctx context.Context, teamID uint) ([]teamModel.Member, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new team repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// GetUser finds a user by id.
func (r *repository) GetUser(ctx context.Context, userID uint) (*userModel.User, error) {
	r.logger.Debugw("GetUser called", "user_id", userID)

	var user userModel.User
	err := r.db.WithContext(ctx).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userModel.ErrUserNotFound
		}
		r.logger.Errorw("GetUser database error", "user_id", userID, "error", err)
		return nil, err
	}

	return &user, nil
}

// LockUser loads a user by id and locks its row.
func (r *repository) LockUser(ctx context.Context, userID uint) (*userModel.User, error) {
	r.logger.Debugw("LockUser called", "user_id", userID)

	var user userModel.User
	err := database.ForUpdate(r.db.WithContext(ctx)).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userModel.ErrUserNotFound
		}
		r.logger.Errorw("LockUser database error", "user_id", userID, "error", err)
		return nil, err
	}

	return &user, nil
}

// LockUserByName loads a user by name and locks its row.
func (r *repository) LockUserByName(ctx context.Context, name string) (*userModel.User, error) {
	r.logger.Debugw("LockUserByName called", "name", name)

	var user userModel.User
	err := database.ForUpdate(r.db.WithContext(ctx)).Where("name = ?", name).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userModel.ErrUserNotFound
		}
		r.logger.Errorw("LockUserByName database error", "name", name, "error", err)
		return nil, err
	}

	return &user, nil
}

// LockTeam loads a team by id and locks its row.
func (r *repository) LockTeam(ctx context.Context, teamID uint) (*teamModel.Team, error) {
	r.logger.Debugw("LockTeam called", "team_id", teamID)

	var team teamModel.Team
	err := database.ForUpdate(r.db.WithContext(ctx)).First(&team, teamID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, teamModel.ErrTeamNotFound
		}
		r.logger.Errorw("LockTeam database error", "team_id", teamID, "error", err)
		return nil, err
	}

	return &team, nil
}

// LockTeamByName loads a team by name and locks its row.
func (r *repository) LockTeamByName(ctx context.Context, name string) (*teamModel.Team, error) {
	r.logger.Debugw("LockTeamByName called", "name", name)

	var team teamModel.Team
	err := database.ForUpdate(r.db.WithContext(ctx)).Where("name = ?", name).First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, teamModel.ErrTeamNotFound
		}
		r.logger.Errorw("LockTeamByName database error", "name", name, "error", err)
		return nil, err
	}

	return &team, nil
}

// GetByID finds a team by id.
func (r *repository) GetByID(ctx context.Context, teamID uint) (*teamModel.Team, error) {
	r.logger.Debugw("GetByID called", "team_id", teamID)

	var team teamModel.Team
	err := r.db.WithContext(ctx).First(&team, teamID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, teamModel.ErrTeamNotFound
		}
		r.logger.Errorw("GetByID database error", "team_id", teamID, "error", err)
		return nil, err
	}

	return &team, nil
}

// NameTaken reports whether a team already uses name.
func (r *repository) NameTaken(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&teamModel.Team{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		r.logger.Errorw("NameTaken database error", "name", name, "error", err)
		return false, err
	}
	return count > 0, nil
}

// Create inserts a team. A unique violation on the name yields ErrDuplicateName.
func (r *repository) Create(ctx context.Context, team *teamModel.Team) error {
	r.logger.Debugw("Create called", "name", team.Name)

	if err := r.db.WithContext(ctx).Create(team).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return teamModel.ErrDuplicateName
		}
		r.logger.Errorw("Create database error", "name", team.Name, "error", err)
		return err
	}

	return nil
}

// Delete removes a team.
func (r *repository) Delete(ctx context.Context, teamID uint) error {
	r.logger.Debugw("Delete called", "team_id", teamID)

	result := r.db.WithContext(ctx).Delete(&teamModel.Team{}, teamID)
	if result.Error != nil {
		r.logger.Errorw("Delete database error", "team_id", teamID, "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return teamModel.ErrTeamNotFound
	}

	return nil
}

// Rename changes a team's name and the cached name on its members.
func (r *repository) Rename(ctx context.Context, teamID uint, name string) error {
	r.logger.Debugw("Rename called", "team_id", teamID, "name", name)

	db := r.db.WithContext(ctx)
	if err := db.Model(&teamModel.Team{}).Where("id = ?", teamID).Update("name", name).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return teamModel.ErrDuplicateName
		}
		r.logger.Errorw("Rename database error", "team_id", teamID, "error", err)
		return err
	}

	if err := db.Model(&userModel.User{}).Where("team_id = ?", teamID).Update("team_name", name).Error; err != nil {
		r.logger.Errorw("Rename members database error", "team_id", teamID, "error", err)
		return err
	}

	return nil
}

// Join puts a user on a team.
func (r *repository) Join(ctx context.Context, userID uint, team *teamModel.Team, captain bool) error {
	r.logger.Debugw("Join called", "user_id", userID, "team_id", team.ID, "captain", captain)

	err := r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"team_id":    team.ID,
			"team_name":  team.Name,
			"is_captain": captain,
		}).Error
	if err != nil {
		r.logger.Errorw("Join database error", "user_id", userID, "team_id", team.ID, "error", err)
		return err
	}

	return nil
}

// Clear takes a user off its team.
func (r *repository) Clear(ctx context.Context, userID uint) error {
	r.logger.Debugw("Clear called", "user_id", userID)

	err := r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"team_id":    nil,
			"team_name":  nil,
			"is_captain": false,
		}).Error
	if err != nil {
		r.logger.Errorw("Clear database error", "user_id", userID, "error", err)
		return err
	}

	return nil
}

// SetCaptain makes userID the only captain of teamID.
func (r *repository) SetCaptain(ctx context.Context, teamID, userID uint) error {
	r.logger.Debugw("SetCaptain called", "team_id", teamID, "user_id", userID)

	db := r.db.WithContext(ctx)
	err := db.Model(&userModel.User{}).
		Where("team_id = ? AND id <> ?", teamID, userID).
		Update("is_captain", false).Error
	if err != nil {
		r.logger.Errorw("SetCaptain database error", "team_id", teamID, "error", err)
		return err
	}

	err = db.Model(&userModel.User{}).
		Where("team_id = ? AND id = ?", teamID, userID).
		Update("is_captain", true).Error
	if err != nil {
		r.logger.Errorw("SetCaptain database error", "team_id", teamID, "error", err)
		return err
	}

	if err := db.Model(&teamModel.Team{}).Where("id = ?", teamID).Update("captain_id", userID).Error; err != nil {
		r.logger.Errorw("SetCaptain database error", "team_id", teamID, "error", err)
		return err
	}

	return nil
}

// CountMembers returns the number of users on a team.
func (r *repository) CountMembers(ctx context.Context, teamID uint) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userModel.User{}).Where("team_id = ?", teamID).Count(&count).Error
	if err != nil {
		r.logger.Errorw("CountMembers database error", "team_id", teamID, "error", err)
		return 0, err
	}
	return int(count), nil
}

// Members returns a team's roster, captain first, then by points.
func (r *repository) Members(ctx context.Context, teamID uint) ([]teamModel.Member, error) {
	r.logger.Debugw("Members called", "team_id", teamID)

	var members []teamModel.Member
	err := r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Select("name, points, is_captain").
		Where("team_id = ?", teamID).
		Order("is_captain DESC, points DESC, id ASC").
		Scan(&members).Error
	if err != nil {
		r.logger.Errorw("Members database error", "team_id", teamID, "error", err)
		return nil, err
	}

	if members == nil {
		members = []teamModel.Member{}
	}

	return members, nil
}
