package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatRoom is the 1:1 channel opened when a quote is accepted. The
// (quote_id, user_id, dealer_id) key is unique so get-or-create stays
// idempotent under concurrent calls.
type ChatRoom struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID           uuid.UUID  `gorm:"column:quote_id;type:uuid;not null;uniqueIndex:idx_chat_rooms_participants"`
	UserID            uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_chat_rooms_participants"`
	DealerID          uuid.UUID  `gorm:"column:dealer_id;type:uuid;not null;uniqueIndex:idx_chat_rooms_participants"`
	LastMessage       *string    `gorm:"column:last_message"`
	LastMessageAt     *time.Time `gorm:"column:last_message_at"`
	UserUnreadCount   int        `gorm:"column:user_unread_count;not null;default:0"`
	DealerUnreadCount int        `gorm:"column:dealer_unread_count;not null;default:0"`
	IsActive          bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`

	Dealer *Dealer `gorm:"foreignKey:DealerID"`
}
