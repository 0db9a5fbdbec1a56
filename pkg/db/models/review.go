package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a user's rating of a dealer after an accepted quote. One review
// per (quote, user).
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID   uuid.UUID `gorm:"column:quote_id;type:uuid;not null;uniqueIndex:idx_reviews_quote_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_reviews_quote_user"`
	DealerID  uuid.UUID `gorm:"column:dealer_id;type:uuid;not null;index"`
	Rating    int       `gorm:"column:rating;not null"`
	Comment   *string   `gorm:"column:comment"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
