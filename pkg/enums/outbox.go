package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateQuoteRequest OutboxAggregateType = "quote_request"
	AggregateQuote        OutboxAggregateType = "quote"
	AggregateChatRoom     OutboxAggregateType = "chat_room"
	AggregateDealer       OutboxAggregateType = "dealer"
	AggregateNotification OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateQuoteRequest,
	AggregateQuote,
	AggregateChatRoom,
	AggregateDealer,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventQuoteRequestCreated OutboxEventType = "quote_request_created"
	EventQuoteRequestExpired OutboxEventType = "quote_request_expired"
	EventQuoteSubmitted      OutboxEventType = "quote_submitted"
	EventQuoteAccepted       OutboxEventType = "quote_accepted"
	EventChatMessageSent     OutboxEventType = "chat_message_sent"
	EventReviewCreated       OutboxEventType = "review_created"
)

var validOutboxEventTypes = []OutboxEventType{
	EventQuoteRequestCreated,
	EventQuoteRequestExpired,
	EventQuoteSubmitted,
	EventQuoteAccepted,
	EventChatMessageSent,
	EventReviewCreated,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
