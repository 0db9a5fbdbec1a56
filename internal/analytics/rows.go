package analytics

import (
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"github.com/google/uuid"
)

// MarketplaceEventRow mirrors the marketplace_events BigQuery schema.
// Every domain event lands in the same wide table; columns that do not
// apply to an event type stay NULL.
type MarketplaceEventRow struct {
	EventID       string             `bigquery:"event_id"`
	EventType     string             `bigquery:"event_type"`
	AggregateType string             `bigquery:"aggregate_type"`
	AggregateID   string             `bigquery:"aggregate_id"`
	OccurredAt    time.Time          `bigquery:"occurred_at"`
	RequestID     *string            `bigquery:"request_id"`
	QuoteID       *string            `bigquery:"quote_id"`
	RoomID        *string            `bigquery:"room_id"`
	MessageID     *string            `bigquery:"message_id"`
	ReviewID      *string            `bigquery:"review_id"`
	UserID        *string            `bigquery:"user_id"`
	DealerID      *string            `bigquery:"dealer_id"`
	DeviceID      *string            `bigquery:"device_id"`
	Carrier       *string            `bigquery:"carrier"`
	TotalCost24M  *int64             `bigquery:"total_cost_24m"`
	ExpiredQuotes *int64             `bigquery:"expired_quotes"`
	Rating        *int64             `bigquery:"rating"`
	ReviewCount   *int64             `bigquery:"review_count"`
	Payload       cbigquery.NullJSON `bigquery:"payload"`
}

func uuidPtr(id uuid.UUID) *string {
	if id == uuid.Nil {
		return nil
	}
	value := id.String()
	return &value
}

func stringPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func int64Ptr(value int64) *int64 {
	return &value
}
