package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/sueworkspace/sungji-drop/pkg/enums"
)

// QuoteRequestCreatedEvent signals a new reverse-auction posting.
type QuoteRequestCreatedEvent struct {
	RequestID uuid.UUID     `json:"request_id"`
	UserID    uuid.UUID     `json:"user_id"`
	DeviceID  uuid.UUID     `json:"device_id"`
	Carrier   enums.Carrier `json:"carrier"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// QuoteRequestExpiredEvent is emitted by the TTL job when a request ages out.
type QuoteRequestExpiredEvent struct {
	RequestID     uuid.UUID `json:"request_id"`
	UserID        uuid.UUID `json:"user_id"`
	ExpiredQuotes int       `json:"expired_quotes"`
	ExpiredAt     time.Time `json:"expired_at"`
}

// QuoteSubmittedEvent is emitted when a dealer bids against a request.
type QuoteSubmittedEvent struct {
	QuoteID      uuid.UUID `json:"quote_id"`
	RequestID    uuid.UUID `json:"request_id"`
	RequestOwner uuid.UUID `json:"request_owner_id"`
	DealerID     uuid.UUID `json:"dealer_id"`
	DealerName   string    `json:"dealer_name"`
	TotalCost24M int64     `json:"total_cost_24m"`
}

// QuoteAcceptedEvent carries the outcome of the accept transaction,
// including the chat room opened for the pair.
type QuoteAcceptedEvent struct {
	QuoteID   uuid.UUID `json:"quote_id"`
	RequestID uuid.UUID `json:"request_id"`
	UserID    uuid.UUID `json:"user_id"`
	DealerID  uuid.UUID `json:"dealer_id"`
	RoomID    uuid.UUID `json:"room_id"`
}

// ChatMessageSentEvent notifies the counterpart of a new chat message.
type ChatMessageSentEvent struct {
	MessageID   uuid.UUID        `json:"message_id"`
	RoomID      uuid.UUID        `json:"room_id"`
	SenderID    uuid.UUID        `json:"sender_id"`
	SenderType  enums.SenderType `json:"sender_type"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	Preview     string           `json:"preview"`
}

// ReviewCreatedEvent reports a new dealer review and the refreshed aggregate.
type ReviewCreatedEvent struct {
	ReviewID    uuid.UUID `json:"review_id"`
	DealerID    uuid.UUID `json:"dealer_id"`
	UserID      uuid.UUID `json:"user_id"`
	Rating      int       `json:"rating"`
	ReviewCount int       `json:"review_count"`
}
