package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sueworkspace/sungji-drop/pkg/enums"
)

// Message is a chat message inside a room.
type Message struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RoomID      uuid.UUID         `gorm:"column:room_id;type:uuid;not null;index"`
	SenderID    uuid.UUID         `gorm:"column:sender_id;type:uuid;not null"`
	SenderType  enums.SenderType  `gorm:"column:sender_type;type:sender_type;not null"`
	Content     string            `gorm:"column:content;type:text;not null"`
	MessageType enums.MessageType `gorm:"column:message_type;type:message_type;not null;default:'text'"`
	IsRead      bool              `gorm:"column:is_read;not null;default:false"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}
