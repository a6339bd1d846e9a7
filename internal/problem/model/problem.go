// Package model provides domain models and DTOs for the problem catalog.
package model

import "time"

// TagWeb marks problems served from a live environment instead of an attachment.
const TagWeb = "web"

// DefaultPoints is awarded when a problem is created without explicit points.
const DefaultPoints = 100

// Problem is a challenge with a secret flag.
type Problem struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"wid"`
	Tag       string    `gorm:"column:tag;type:varchar(32);not null;index" json:"tag"`
	Name      string    `gorm:"column:name;type:varchar(128);uniqueIndex;not null" json:"name"`
	Flag      string    `gorm:"column:flag;type:varchar(255);uniqueIndex;not null" json:"-"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	Link      *string   `gorm:"column:link;type:varchar(512)" json:"link"`
	Filename  *string   `gorm:"column:filename;type:varchar(255)" json:"-"`
	FilePath  *string   `gorm:"column:file_path;type:varchar(512)" json:"-"`
	Points    int       `gorm:"column:points;not null;default:100" json:"points"`
	CreatedAt time.Time `gorm:"column:created_at" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"-"`
}

// TableName specifies the table name for GORM.
func (Problem) TableName() string {
	return "problems"
}

// IsWeb reports whether the problem is served from a live environment.
func (p *Problem) IsWeb() bool {
	return p.Tag == TagWeb
}
