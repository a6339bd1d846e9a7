// Package model provides domain models and DTOs for writeups.
package model

import "time"

// MaxContentLength bounds writeup bodies.
const MaxContentLength = 1024

// Writeup is a solution description published by a user.
type Writeup struct {
	ID          uint      `gorm:"primaryKey;column:id" json:"id"`
	ProblemName string    `gorm:"column:problem_name;type:varchar(128);not null" json:"problem_name"`
	UserName    string    `gorm:"column:user_name;type:varchar(64);not null;index" json:"author"`
	Tag         string    `gorm:"column:tag;type:varchar(32);not null" json:"tag"`
	Name        string    `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Content     string    `gorm:"column:content;type:varchar(1024);not null" json:"content"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"-"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"update_time"`
}

// TableName specifies the table name for GORM.
func (Writeup) TableName() string {
	return "writeups"
}
