// Package model provides domain models and DTOs for the user module.
package model

import (
	"time"

	"github.com/festy23/ctf_platform/internal/credential"
)

// User is a competitor account.
type User struct {
	ID         uint                  `gorm:"primaryKey;column:id" json:"id"`
	Name       string                `gorm:"column:name;type:varchar(64);uniqueIndex;not null" json:"name"`
	Email      string                `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Password   credential.Credential `gorm:"column:password_hash;not null" json:"-"`
	RealName   string                `gorm:"column:real_name;type:varchar(64);not null" json:"real_name"`
	IDCard     string                `gorm:"column:id_card;type:varchar(18);not null" json:"-"`
	Points     int                   `gorm:"column:points;not null;default:0" json:"points"`
	Rank       *int                  `gorm:"column:rank" json:"rank"`
	IsVerified bool                  `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	TeamID     *uint                 `gorm:"column:team_id;index" json:"team_id"`
	TeamName   *string               `gorm:"column:team_name;type:varchar(64)" json:"team_name"`
	IsCaptain  bool                  `gorm:"column:is_captain;not null;default:false" json:"is_captain"`
	CreatedAt  time.Time             `gorm:"column:created_at" json:"-"`
	UpdatedAt  time.Time             `gorm:"column:updated_at" json:"-"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// OnTeam reports whether the user belongs to a team.
func (u *User) OnTeam() bool {
	return u.TeamID != nil
}
