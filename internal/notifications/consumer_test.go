package notifications

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
	"github.com/sueworkspace/sungji-drop/pkg/outbox/payloads"
)

type fakeNotificationRepo struct {
	created []*models.Notification
	err     error
}

func (f *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, notification)
	return nil
}

type fakeConsumerDealerRepo struct {
	dealers map[uuid.UUID]*models.Dealer
}

func (f *fakeConsumerDealerRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	if dealer, ok := f.dealers[id]; ok {
		return dealer, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestConsumer(repo *fakeNotificationRepo, dealers *fakeConsumerDealerRepo) *Consumer {
	return &Consumer{repo: repo, dealers: dealers}
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestHandleQuoteSubmittedNotifiesRequestOwner(t *testing.T) {
	repo := &fakeNotificationRepo{}
	consumer := newTestConsumer(repo, &fakeConsumerDealerRepo{})

	owner := uuid.New()
	payload := payloads.QuoteSubmittedEvent{
		QuoteID:      uuid.New(),
		RequestID:    uuid.New(),
		RequestOwner: owner,
		DealerID:     uuid.New(),
		DealerName:   "강남휴대폰성지",
		TotalCost24M: 2_276_000,
	}

	require.NoError(t, consumer.handleQuoteSubmitted(context.Background(), mustMarshal(t, payload)))
	require.Len(t, repo.created, 1)

	created := repo.created[0]
	assert.Equal(t, owner, created.UserID)
	assert.Equal(t, enums.NotificationTypeNewQuote, created.Type)
	assert.Contains(t, created.Body, "강남휴대폰성지")
	assert.Contains(t, created.Body, "2,276,000")
	assert.Equal(t, payload.QuoteID.String(), created.Data["quote_id"])
	assert.Equal(t, payload.RequestID.String(), created.Data["request_id"])
}

func TestHandleQuoteAcceptedNotifiesDealerUser(t *testing.T) {
	repo := &fakeNotificationRepo{}
	dealerUser := uuid.New()
	dealerID := uuid.New()
	dealers := &fakeConsumerDealerRepo{dealers: map[uuid.UUID]*models.Dealer{
		dealerID: {ID: dealerID, UserID: dealerUser, StoreName: "신도림테크노성지"},
	}}
	consumer := newTestConsumer(repo, dealers)

	payload := payloads.QuoteAcceptedEvent{
		QuoteID:   uuid.New(),
		RequestID: uuid.New(),
		UserID:    uuid.New(),
		DealerID:  dealerID,
		RoomID:    uuid.New(),
	}

	require.NoError(t, consumer.handleQuoteAccepted(context.Background(), mustMarshal(t, payload)))
	require.Len(t, repo.created, 1)

	created := repo.created[0]
	assert.Equal(t, dealerUser, created.UserID)
	assert.Equal(t, enums.NotificationTypeQuoteAccepted, created.Type)
	assert.Equal(t, payload.RoomID.String(), created.Data["room_id"])
}

func TestHandleQuoteAcceptedFailsWhenDealerMissing(t *testing.T) {
	repo := &fakeNotificationRepo{}
	consumer := newTestConsumer(repo, &fakeConsumerDealerRepo{})

	payload := payloads.QuoteAcceptedEvent{QuoteID: uuid.New(), DealerID: uuid.New()}
	err := consumer.handleQuoteAccepted(context.Background(), mustMarshal(t, payload))
	require.Error(t, err)
	assert.Empty(t, repo.created)
}

func TestHandleChatMessageSentUsesPreviewAsBody(t *testing.T) {
	repo := &fakeNotificationRepo{}
	consumer := newTestConsumer(repo, &fakeConsumerDealerRepo{})

	recipient := uuid.New()
	payload := payloads.ChatMessageSentEvent{
		MessageID:   uuid.New(),
		RoomID:      uuid.New(),
		SenderID:    uuid.New(),
		SenderType:  enums.SenderTypeDealer,
		RecipientID: recipient,
		Preview:     "방문 예약 도와드릴까요?",
	}

	require.NoError(t, consumer.handleChatMessageSent(context.Background(), mustMarshal(t, payload)))
	require.Len(t, repo.created, 1)
	assert.Equal(t, recipient, repo.created[0].UserID)
	assert.Equal(t, "방문 예약 도와드릴까요?", repo.created[0].Body)
}

func TestHandleRequestExpired(t *testing.T) {
	repo := &fakeNotificationRepo{}
	consumer := newTestConsumer(repo, &fakeConsumerDealerRepo{})

	payload := payloads.QuoteRequestExpiredEvent{
		RequestID:     uuid.New(),
		UserID:        uuid.New(),
		ExpiredQuotes: 3,
	}

	require.NoError(t, consumer.handleRequestExpired(context.Background(), mustMarshal(t, payload)))
	require.Len(t, repo.created, 1)
	assert.Equal(t, enums.NotificationTypeQuoteExpired, repo.created[0].Type)
}

func TestFormatKRW(t *testing.T) {
	assert.Equal(t, "0", formatKRW(0))
	assert.Equal(t, "999", formatKRW(999))
	assert.Equal(t, "1,000", formatKRW(1_000))
	assert.Equal(t, "2,276,000", formatKRW(2_276_000))
	assert.Equal(t, "-55,000", formatKRW(-55_000))
}
