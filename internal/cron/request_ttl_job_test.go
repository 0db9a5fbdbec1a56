package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
	"github.com/sueworkspace/sungji-drop/pkg/logger"
	"github.com/sueworkspace/sungji-drop/pkg/outbox"
)

type cronFakeTxRunner struct{}

func (cronFakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeExpirableReader struct {
	requests []models.QuoteRequest
	err      error
}

func (f *fakeExpirableReader) FindExpirableRequests(ctx context.Context, cutoff time.Time, limit int) ([]models.QuoteRequest, error) {
	return f.requests, f.err
}

type fakeExpirer struct {
	statuses      map[uuid.UUID]enums.RequestStatus
	pendingCounts map[uuid.UUID]int64
	expired       []uuid.UUID
	failOn        uuid.UUID
}

func (f *fakeExpirer) FindRequest(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error) {
	status, ok := f.statuses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.QuoteRequest{ID: id, UserID: uuid.New(), Status: status}, nil
}

func (f *fakeExpirer) UpdateRequest(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if id == f.failOn {
		return assert.AnError
	}
	f.expired = append(f.expired, id)
	return nil
}

func (f *fakeExpirer) ExpirePendingQuotes(ctx context.Context, requestID uuid.UUID) (int64, error) {
	return f.pendingCounts[requestID], nil
}

type fakeTTLOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeTTLOutbox) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func newTTLJob(t *testing.T, reader *fakeExpirableReader, expirer *fakeExpirer, emitter *fakeTTLOutbox) Job {
	t.Helper()
	job, err := NewRequestTTLJob(RequestTTLJobParams{
		Logger:      logger.New(logger.Options{ServiceName: "test"}),
		DB:          cronFakeTxRunner{},
		Reader:      reader,
		Outbox:      emitter,
		RepoFactory: func(tx *gorm.DB) requestExpirer { return expirer },
	})
	require.NoError(t, err)
	return job
}

func TestRequestTTLJobExpiresStaleRequests(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	reader := &fakeExpirableReader{requests: []models.QuoteRequest{{ID: first}, {ID: second}}}
	expirer := &fakeExpirer{
		statuses: map[uuid.UUID]enums.RequestStatus{
			first:  enums.RequestStatusQuoted,
			second: enums.RequestStatusOpen,
		},
		pendingCounts: map[uuid.UUID]int64{first: 3},
	}
	emitter := &fakeTTLOutbox{}

	job := newTTLJob(t, reader, expirer, emitter)
	require.NoError(t, job.Run(context.Background()))

	assert.ElementsMatch(t, []uuid.UUID{first, second}, expirer.expired)
	require.Len(t, emitter.events, 2)
	assert.Equal(t, enums.EventQuoteRequestExpired, emitter.events[0].EventType)
	assert.Equal(t, first, emitter.events[0].AggregateID)
}

func TestRequestTTLJobSkipsRequestsClosedSinceScan(t *testing.T) {
	id := uuid.New()
	reader := &fakeExpirableReader{requests: []models.QuoteRequest{{ID: id}}}
	expirer := &fakeExpirer{statuses: map[uuid.UUID]enums.RequestStatus{id: enums.RequestStatusAccepted}}
	emitter := &fakeTTLOutbox{}

	job := newTTLJob(t, reader, expirer, emitter)
	require.NoError(t, job.Run(context.Background()))

	assert.Empty(t, expirer.expired)
	assert.Empty(t, emitter.events)
}

func TestRequestTTLJobContinuesPastFailures(t *testing.T) {
	failing := uuid.New()
	healthy := uuid.New()
	reader := &fakeExpirableReader{requests: []models.QuoteRequest{{ID: failing}, {ID: healthy}}}
	expirer := &fakeExpirer{
		statuses: map[uuid.UUID]enums.RequestStatus{
			failing: enums.RequestStatusOpen,
			healthy: enums.RequestStatusOpen,
		},
		failOn: failing,
	}
	emitter := &fakeTTLOutbox{}

	job := newTTLJob(t, reader, expirer, emitter)
	err := job.Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, []uuid.UUID{healthy}, expirer.expired)
	require.Len(t, emitter.events, 1)
	assert.Equal(t, healthy, emitter.events[0].AggregateID)
}
