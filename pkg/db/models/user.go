package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical identity entity. Password hash is empty for
// accounts created through phone OTP sign-in.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        *string    `gorm:"type:text;uniqueIndex"`
	PasswordHash *string    `gorm:"column:password_hash"`
	Phone        *string    `gorm:"column:phone;uniqueIndex"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
