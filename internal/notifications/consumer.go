package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
	"github.com/sueworkspace/sungji-drop/pkg/logger"
	"github.com/sueworkspace/sungji-drop/pkg/outbox"
	"github.com/sueworkspace/sungji-drop/pkg/outbox/idempotency"
	"github.com/sueworkspace/sungji-drop/pkg/outbox/payloads"
	"github.com/sueworkspace/sungji-drop/pkg/types"
)

const marketplaceNotificationConsumer = "marketplace-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type dealerReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer fans domain events out into per-user notification rows.
type Consumer struct {
	repo         repository
	dealers      dealerReader
	subscription *pubsub.Subscriber
	idempotency  idempotencyChecker
	logg         *logger.Logger
}

func NewConsumer(repo repository, dealers dealerReader, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if dealers == nil {
		return nil, fmt.Errorf("dealers repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		dealers:      dealers,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	handler, ok := c.handlerFor(eventType)
	if !ok {
		c.logg.Info(logCtx, "skipping unhandled event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, marketplaceNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := handler(ctx, envelope.Data); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, marketplaceNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handlerFor(eventType enums.OutboxEventType) (func(ctx context.Context, data json.RawMessage) error, bool) {
	switch eventType {
	case enums.EventQuoteSubmitted:
		return c.handleQuoteSubmitted, true
	case enums.EventQuoteAccepted:
		return c.handleQuoteAccepted, true
	case enums.EventChatMessageSent:
		return c.handleChatMessageSent, true
	case enums.EventQuoteRequestExpired:
		return c.handleRequestExpired, true
	default:
		return nil, false
	}
}

func (c *Consumer) handleQuoteSubmitted(ctx context.Context, data json.RawMessage) error {
	var payload payloads.QuoteSubmittedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}
	if payload.RequestOwner == uuid.Nil {
		return fmt.Errorf("request owner missing")
	}

	return c.repo.Create(ctx, &models.Notification{
		UserID: payload.RequestOwner,
		Type:   enums.NotificationTypeNewQuote,
		Title:  "새 견적이 도착했어요",
		Body:   fmt.Sprintf("%s에서 %s원 견적을 보냈습니다.", payload.DealerName, formatKRW(payload.TotalCost24M)),
		Data: types.JSONMap{
			"request_id": payload.RequestID.String(),
			"quote_id":   payload.QuoteID.String(),
		},
	})
}

func (c *Consumer) handleQuoteAccepted(ctx context.Context, data json.RawMessage) error {
	var payload payloads.QuoteAcceptedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}

	dealer, err := c.dealers.FindByID(ctx, payload.DealerID)
	if err != nil {
		return fmt.Errorf("load dealer: %w", err)
	}

	return c.repo.Create(ctx, &models.Notification{
		UserID: dealer.UserID,
		Type:   enums.NotificationTypeQuoteAccepted,
		Title:  "견적이 채택되었어요",
		Body:   "고객이 견적을 수락했습니다. 채팅으로 구매를 진행해 주세요.",
		Data: types.JSONMap{
			"request_id": payload.RequestID.String(),
			"quote_id":   payload.QuoteID.String(),
			"room_id":    payload.RoomID.String(),
		},
	})
}

func (c *Consumer) handleChatMessageSent(ctx context.Context, data json.RawMessage) error {
	var payload payloads.ChatMessageSentEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}
	if payload.RecipientID == uuid.Nil {
		return fmt.Errorf("recipient missing")
	}

	return c.repo.Create(ctx, &models.Notification{
		UserID: payload.RecipientID,
		Type:   enums.NotificationTypeChatMessage,
		Title:  "새 메시지",
		Body:   payload.Preview,
		Data: types.JSONMap{
			"room_id":    payload.RoomID.String(),
			"message_id": payload.MessageID.String(),
		},
	})
}

func (c *Consumer) handleRequestExpired(ctx context.Context, data json.RawMessage) error {
	var payload payloads.QuoteRequestExpiredEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("request owner missing")
	}

	return c.repo.Create(ctx, &models.Notification{
		UserID: payload.UserID,
		Type:   enums.NotificationTypeQuoteExpired,
		Title:  "견적 요청이 만료되었어요",
		Body:   "72시간 동안 채택되지 않아 요청이 마감되었습니다. 새 요청을 올려보세요.",
		Data: types.JSONMap{
			"request_id": payload.RequestID.String(),
		},
	})
}

// formatKRW inserts thousands separators the way the app renders prices.
func formatKRW(amount int64) string {
	digits := fmt.Sprintf("%d", amount)
	negative := false
	if amount < 0 {
		negative = true
		digits = digits[1:]
	}
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}
	if negative {
		return "-" + string(out)
	}
	return string(out)
}
