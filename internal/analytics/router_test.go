package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sueworkspace/sungji-drop/pkg/enums"
	"github.com/sueworkspace/sungji-drop/pkg/logger"
	"github.com/sueworkspace/sungji-drop/pkg/outbox/payloads"
)

type fakeRowWriter struct {
	rows []MarketplaceEventRow
	err  error
}

func (f *fakeRowWriter) InsertMarketplace(_ context.Context, row MarketplaceEventRow) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, row)
	return nil
}

func newTestRouter(t *testing.T) (*Router, *fakeRowWriter) {
	t.Helper()
	writer := &fakeRowWriter{}
	router, err := NewRouter(writer, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return router, writer
}

func testEnvelope(t *testing.T, eventType enums.OutboxEventType, aggregate enums.OutboxAggregateType, aggregateID string, payload any) Envelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateType: aggregate,
		AggregateID:   aggregateID,
		OccurredAt:    time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		Payload:       raw,
	}
}

func TestRouterQuoteSubmittedRow(t *testing.T) {
	router, writer := newTestRouter(t)

	event := payloads.QuoteSubmittedEvent{
		QuoteID:      uuid.New(),
		RequestID:    uuid.New(),
		RequestOwner: uuid.New(),
		DealerID:     uuid.New(),
		DealerName:   "강남휴대폰성지",
		TotalCost24M: 2276000,
	}
	envelope := testEnvelope(t, enums.EventQuoteSubmitted, enums.AggregateQuote, event.QuoteID.String(), event)

	require.NoError(t, router.Handle(context.Background(), envelope))
	require.Len(t, writer.rows, 1)

	row := writer.rows[0]
	assert.Equal(t, envelope.EventID, row.EventID)
	assert.Equal(t, "quote_submitted", row.EventType)
	assert.Equal(t, event.QuoteID.String(), *row.QuoteID)
	assert.Equal(t, event.RequestID.String(), *row.RequestID)
	assert.Equal(t, event.RequestOwner.String(), *row.UserID)
	assert.Equal(t, event.DealerID.String(), *row.DealerID)
	assert.Equal(t, int64(2276000), *row.TotalCost24M)
	assert.True(t, row.Payload.Valid)
	assert.Nil(t, row.RoomID)
}

func TestRouterQuoteAcceptedRow(t *testing.T) {
	router, writer := newTestRouter(t)

	event := payloads.QuoteAcceptedEvent{
		QuoteID:   uuid.New(),
		RequestID: uuid.New(),
		UserID:    uuid.New(),
		DealerID:  uuid.New(),
		RoomID:    uuid.New(),
	}
	envelope := testEnvelope(t, enums.EventQuoteAccepted, enums.AggregateQuote, event.QuoteID.String(), event)

	require.NoError(t, router.Handle(context.Background(), envelope))
	require.Len(t, writer.rows, 1)

	row := writer.rows[0]
	assert.Equal(t, event.RoomID.String(), *row.RoomID)
	assert.Equal(t, event.UserID.String(), *row.UserID)
	assert.Nil(t, row.TotalCost24M)
}

func TestRouterRequestExpiredRow(t *testing.T) {
	router, writer := newTestRouter(t)

	event := payloads.QuoteRequestExpiredEvent{
		RequestID:     uuid.New(),
		UserID:        uuid.New(),
		ExpiredQuotes: 3,
		ExpiredAt:     time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
	}
	envelope := testEnvelope(t, enums.EventQuoteRequestExpired, enums.AggregateQuoteRequest, event.RequestID.String(), event)

	require.NoError(t, router.Handle(context.Background(), envelope))
	require.Len(t, writer.rows, 1)
	assert.Equal(t, int64(3), *writer.rows[0].ExpiredQuotes)
}

func TestRouterReviewCreatedRow(t *testing.T) {
	router, writer := newTestRouter(t)

	event := payloads.ReviewCreatedEvent{
		ReviewID:    uuid.New(),
		DealerID:    uuid.New(),
		UserID:      uuid.New(),
		Rating:      5,
		ReviewCount: 12,
	}
	envelope := testEnvelope(t, enums.EventReviewCreated, enums.AggregateDealer, event.DealerID.String(), event)

	require.NoError(t, router.Handle(context.Background(), envelope))
	require.Len(t, writer.rows, 1)

	row := writer.rows[0]
	assert.Equal(t, int64(5), *row.Rating)
	assert.Equal(t, int64(12), *row.ReviewCount)
}

func TestRouterUnsupportedEventType(t *testing.T) {
	router, writer := newTestRouter(t)

	envelope := Envelope{
		EventID:   uuid.NewString(),
		EventType: enums.OutboxEventType("device_restocked"),
	}

	err := router.Handle(context.Background(), envelope)
	assert.ErrorIs(t, err, ErrUnsupportedEventType)
	assert.Empty(t, writer.rows)
}

func TestBuildEnvelope(t *testing.T) {
	eventID := uuid.NewString()
	requestID := uuid.NewString()
	occurred := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	data, err := json.Marshal(map[string]any{
		"version":    1,
		"eventId":    eventID,
		"occurredAt": occurred.Format(time.RFC3339Nano),
		"data":       map[string]any{"request_id": requestID},
	})
	require.NoError(t, err)

	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type":     "quote_request_created",
			"aggregate_type": "quote_request",
			"aggregate_id":   requestID,
		},
	}

	envelope, err := buildEnvelope(msg)
	require.NoError(t, err)
	assert.Equal(t, eventID, envelope.EventID)
	assert.Equal(t, enums.EventQuoteRequestCreated, envelope.EventType)
	assert.Equal(t, enums.AggregateQuoteRequest, envelope.AggregateType)
	assert.Equal(t, requestID, envelope.AggregateID)
	assert.Equal(t, occurred, envelope.OccurredAt)

	payload, err := envelope.PayloadMap()
	require.NoError(t, err)
	assert.Equal(t, requestID, payload["request_id"])
}

func TestBuildEnvelopeFallsBackToAttributes(t *testing.T) {
	eventID := uuid.NewString()
	created := time.Date(2026, 8, 21, 9, 30, 0, 0, time.UTC)

	msg := &pubsub.Message{
		Data: []byte(`{}`),
		Attributes: map[string]string{
			"event_type":     "quote_submitted",
			"aggregate_type": "quote",
			"aggregate_id":   uuid.NewString(),
			"event_id":       eventID,
			"created_at":     created.Format(time.RFC3339Nano),
		},
	}

	envelope, err := buildEnvelope(msg)
	require.NoError(t, err)
	assert.Equal(t, eventID, envelope.EventID)
	assert.Equal(t, created, envelope.OccurredAt)
}

func TestBuildEnvelopeRejectsMissingAggregateID(t *testing.T) {
	msg := &pubsub.Message{
		Data: []byte(`{}`),
		Attributes: map[string]string{
			"event_type":     "quote_submitted",
			"aggregate_type": "quote",
			"event_id":       uuid.NewString(),
		},
	}

	_, err := buildEnvelope(msg)
	assert.Error(t, err)
}
