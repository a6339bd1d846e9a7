// Package model provides domain models and DTOs for the team module.
package model

import "time"

// Team is a group of users that competes as a unit.
// Num and Points are derived from the roster.
type Team struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(64);uniqueIndex;not null" json:"name"`
	Code      string    `gorm:"column:code;type:varchar(64);not null" json:"-"`
	Num       int       `gorm:"column:num;not null;default:0" json:"num"`
	Points    int       `gorm:"column:points;not null;default:0" json:"points"`
	Rank      *int      `gorm:"column:rank" json:"rank"`
	CaptainID uint      `gorm:"column:captain_id;not null" json:"captain_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"-"`
}

// TableName specifies the table name for GORM.
func (Team) TableName() string {
	return "teams"
}
