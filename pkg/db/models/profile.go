package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the 1:1 user profile created during onboarding. A user without
// a profile row (or with an empty nickname) still needs setup.
type Profile struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Nickname  string    `gorm:"column:nickname;type:text;not null"`
	Phone     *string   `gorm:"column:phone"`
	AvatarURL *string   `gorm:"column:avatar_url"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
