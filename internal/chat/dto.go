package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
)

// RoomDTO is the chat room transport shape for the user-facing list.
type RoomDTO struct {
	ID            uuid.UUID  `json:"id"`
	QuoteID       uuid.UUID  `json:"quote_id"`
	UserID        uuid.UUID  `json:"user_id"`
	DealerID      uuid.UUID  `json:"dealer_id"`
	DealerName    string     `json:"dealer_name,omitempty"`
	LastMessage   *string    `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	UnreadCount   int        `json:"unread_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

// MessageDTO is the message transport shape.
type MessageDTO struct {
	ID          uuid.UUID         `json:"id"`
	RoomID      uuid.UUID         `json:"room_id"`
	SenderID    uuid.UUID         `json:"sender_id"`
	SenderType  enums.SenderType  `json:"sender_type"`
	Content     string            `json:"content"`
	MessageType enums.MessageType `json:"message_type"`
	IsRead      bool              `json:"is_read"`
	CreatedAt   time.Time         `json:"created_at"`
}

// OpenRoomRequest asks for the room tied to a quote, creating it if needed.
type OpenRoomRequest struct {
	QuoteID uuid.UUID `json:"quote_id" validate:"required"`
}

// SendMessageRequest is the message submission payload.
type SendMessageRequest struct {
	Content     string `json:"content" validate:"required,max=2000"`
	MessageType string `json:"message_type,omitempty"`
}

func roomFromModel(room *models.ChatRoom, viewer enums.SenderType) RoomDTO {
	unread := room.UserUnreadCount
	if viewer == enums.SenderTypeDealer {
		unread = room.DealerUnreadCount
	}
	dto := RoomDTO{
		ID:            room.ID,
		QuoteID:       room.QuoteID,
		UserID:        room.UserID,
		DealerID:      room.DealerID,
		LastMessage:   room.LastMessage,
		LastMessageAt: room.LastMessageAt,
		UnreadCount:   unread,
		CreatedAt:     room.CreatedAt,
	}
	if room.Dealer != nil {
		dto.DealerName = room.Dealer.StoreName
	}
	return dto
}

func messageFromModel(m *models.Message) MessageDTO {
	return MessageDTO{
		ID:          m.ID,
		RoomID:      m.RoomID,
		SenderID:    m.SenderID,
		SenderType:  m.SenderType,
		Content:     m.Content,
		MessageType: m.MessageType,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}
}
