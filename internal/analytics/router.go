package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sueworkspace/sungji-drop/pkg/enums"
	"github.com/sueworkspace/sungji-drop/pkg/logger"
	"github.com/sueworkspace/sungji-drop/pkg/outbox/payloads"
)

// ErrUnsupportedEventType marks envelopes no handler is registered for.
var ErrUnsupportedEventType = errors.New("unsupported analytics event type")

// Writer delivers BigQuery rows produced by analytics handlers.
type Writer interface {
	InsertMarketplace(ctx context.Context, row MarketplaceEventRow) error
}

// Handler receives an envelope plus its decoded event payload.
type Handler interface {
	Handle(ctx context.Context, envelope Envelope, payload any) error
}

type handlerEntry struct {
	factory func() any
	handler Handler
}

// Router dispatches analytics envelopes to the configured handler per event type.
type Router struct {
	handlers map[enums.OutboxEventType]handlerEntry
	logg     *logger.Logger
}

// NewRouter wires the default handlers for every marketplace event type.
func NewRouter(writer Writer, logg *logger.Logger) (*Router, error) {
	if writer == nil {
		return nil, errors.New("writer is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}

	entries := map[enums.OutboxEventType]handlerEntry{
		enums.EventQuoteRequestCreated: {
			factory: func() any { return &payloads.QuoteRequestCreatedEvent{} },
			handler: newRowHandler(writer, logg, buildRequestCreatedRow),
		},
		enums.EventQuoteRequestExpired: {
			factory: func() any { return &payloads.QuoteRequestExpiredEvent{} },
			handler: newRowHandler(writer, logg, buildRequestExpiredRow),
		},
		enums.EventQuoteSubmitted: {
			factory: func() any { return &payloads.QuoteSubmittedEvent{} },
			handler: newRowHandler(writer, logg, buildQuoteSubmittedRow),
		},
		enums.EventQuoteAccepted: {
			factory: func() any { return &payloads.QuoteAcceptedEvent{} },
			handler: newRowHandler(writer, logg, buildQuoteAcceptedRow),
		},
		enums.EventChatMessageSent: {
			factory: func() any { return &payloads.ChatMessageSentEvent{} },
			handler: newRowHandler(writer, logg, buildChatMessageRow),
		},
		enums.EventReviewCreated: {
			factory: func() any { return &payloads.ReviewCreatedEvent{} },
			handler: newRowHandler(writer, logg, buildReviewCreatedRow),
		},
	}

	return &Router{handlers: entries, logg: logg}, nil
}

// Handle decodes the payload for the envelope's event type and runs its handler.
func (r *Router) Handle(ctx context.Context, envelope Envelope) error {
	entry, ok := r.handlers[envelope.EventType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedEventType, envelope.EventType)
	}

	payload := entry.factory()
	if len(envelope.Payload) > 0 {
		if err := json.Unmarshal(envelope.Payload, payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", envelope.EventType, err)
		}
	}

	return entry.handler.Handle(ctx, envelope, payload)
}

type rowBuilder func(envelope Envelope, payload any) (MarketplaceEventRow, error)

type rowHandler struct {
	writer Writer
	logg   *logger.Logger
	build  rowBuilder
}

func newRowHandler(writer Writer, logg *logger.Logger, build rowBuilder) Handler {
	return &rowHandler{writer: writer, logg: logg, build: build}
}

func (h *rowHandler) Handle(ctx context.Context, envelope Envelope, payload any) error {
	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": envelope.EventType,
	})

	row, err := h.build(envelope, payload)
	if err != nil {
		h.logg.Error(logCtx, "failed to build marketplace row", err)
		return err
	}

	if err := h.writer.InsertMarketplace(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert marketplace row", err)
		return err
	}

	h.logg.Info(logCtx, "marketplace row inserted")
	return nil
}

func baseRow(envelope Envelope, payload any) (MarketplaceEventRow, error) {
	payloadJSON, err := EncodeJSON(payload)
	if err != nil {
		return MarketplaceEventRow{}, fmt.Errorf("encode payload json: %w", err)
	}
	return MarketplaceEventRow{
		EventID:       envelope.EventID,
		EventType:     string(envelope.EventType),
		AggregateType: string(envelope.AggregateType),
		AggregateID:   envelope.AggregateID,
		OccurredAt:    envelope.OccurredAt,
		Payload:       payloadJSON,
	}, nil
}

func buildRequestCreatedRow(envelope Envelope, payload any) (MarketplaceEventRow, error) {
	event, ok := payload.(*payloads.QuoteRequestCreatedEvent)
	if !ok {
		return MarketplaceEventRow{}, fmt.Errorf("invalid payload for %s", envelope.EventType)
	}
	row, err := baseRow(envelope, event)
	if err != nil {
		return MarketplaceEventRow{}, err
	}
	row.RequestID = uuidPtr(event.RequestID)
	row.UserID = uuidPtr(event.UserID)
	row.DeviceID = uuidPtr(event.DeviceID)
	row.Carrier = stringPtr(string(event.Carrier))
	return row, nil
}

func buildRequestExpiredRow(envelope Envelope, payload any) (MarketplaceEventRow, error) {
	event, ok := payload.(*payloads.QuoteRequestExpiredEvent)
	if !ok {
		return MarketplaceEventRow{}, fmt.Errorf("invalid payload for %s", envelope.EventType)
	}
	row, err := baseRow(envelope, event)
	if err != nil {
		return MarketplaceEventRow{}, err
	}
	row.RequestID = uuidPtr(event.RequestID)
	row.UserID = uuidPtr(event.UserID)
	row.ExpiredQuotes = int64Ptr(int64(event.ExpiredQuotes))
	return row, nil
}

func buildQuoteSubmittedRow(envelope Envelope, payload any) (MarketplaceEventRow, error) {
	event, ok := payload.(*payloads.QuoteSubmittedEvent)
	if !ok {
		return MarketplaceEventRow{}, fmt.Errorf("invalid payload for %s", envelope.EventType)
	}
	row, err := baseRow(envelope, event)
	if err != nil {
		return MarketplaceEventRow{}, err
	}
	row.QuoteID = uuidPtr(event.QuoteID)
	row.RequestID = uuidPtr(event.RequestID)
	row.UserID = uuidPtr(event.RequestOwner)
	row.DealerID = uuidPtr(event.DealerID)
	row.TotalCost24M = int64Ptr(event.TotalCost24M)
	return row, nil
}

func buildQuoteAcceptedRow(envelope Envelope, payload any) (MarketplaceEventRow, error) {
	event, ok := payload.(*payloads.QuoteAcceptedEvent)
	if !ok {
		return MarketplaceEventRow{}, fmt.Errorf("invalid payload for %s", envelope.EventType)
	}
	row, err := baseRow(envelope, event)
	if err != nil {
		return MarketplaceEventRow{}, err
	}
	row.QuoteID = uuidPtr(event.QuoteID)
	row.RequestID = uuidPtr(event.RequestID)
	row.UserID = uuidPtr(event.UserID)
	row.DealerID = uuidPtr(event.DealerID)
	row.RoomID = uuidPtr(event.RoomID)
	return row, nil
}

func buildChatMessageRow(envelope Envelope, payload any) (MarketplaceEventRow, error) {
	event, ok := payload.(*payloads.ChatMessageSentEvent)
	if !ok {
		return MarketplaceEventRow{}, fmt.Errorf("invalid payload for %s", envelope.EventType)
	}
	row, err := baseRow(envelope, event)
	if err != nil {
		return MarketplaceEventRow{}, err
	}
	row.MessageID = uuidPtr(event.MessageID)
	row.RoomID = uuidPtr(event.RoomID)
	row.UserID = uuidPtr(event.SenderID)
	return row, nil
}

func buildReviewCreatedRow(envelope Envelope, payload any) (MarketplaceEventRow, error) {
	event, ok := payload.(*payloads.ReviewCreatedEvent)
	if !ok {
		return MarketplaceEventRow{}, fmt.Errorf("invalid payload for %s", envelope.EventType)
	}
	row, err := baseRow(envelope, event)
	if err != nil {
		return MarketplaceEventRow{}, err
	}
	row.ReviewID = uuidPtr(event.ReviewID)
	row.DealerID = uuidPtr(event.DealerID)
	row.UserID = uuidPtr(event.UserID)
	row.Rating = int64Ptr(int64(event.Rating))
	row.ReviewCount = int64Ptr(int64(event.ReviewCount))
	return row, nil
}
