// Package model provides identity types, DTOs and errors for authentication.
package model

import (
	"time"

	"github.com/festy23/ctf_platform/internal/credential"
)

// Admin is an operator account. Admins never compete.
type Admin struct {
	ID        uint                  `gorm:"primaryKey;column:id"`
	Name      string                `gorm:"column:name;type:varchar(64);uniqueIndex;not null"`
	Password  credential.Credential `gorm:"column:password_hash;not null"`
	CreatedAt time.Time             `gorm:"column:created_at"`
	UpdatedAt time.Time             `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM.
func (Admin) TableName() string {
	return "admins"
}
