package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/internal/quotes"
	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
	"github.com/sueworkspace/sungji-drop/pkg/logger"
	"github.com/sueworkspace/sungji-drop/pkg/outbox"
	"github.com/sueworkspace/sungji-drop/pkg/outbox/payloads"
)

const defaultExpireBatchSize = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type expirableRequestReader interface {
	FindExpirableRequests(ctx context.Context, cutoff time.Time, limit int) ([]models.QuoteRequest, error)
}

type requestExpirer interface {
	FindRequest(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error)
	UpdateRequest(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ExpirePendingQuotes(ctx context.Context, requestID uuid.UUID) (int64, error)
}

type expirerFactory func(tx *gorm.DB) requestExpirer

func defaultExpirerFactory(tx *gorm.DB) requestExpirer {
	return quotes.NewRepository(tx)
}

// RequestTTLJobParams configure the request expiry scheduler.
type RequestTTLJobParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Reader      expirableRequestReader
	Outbox      outboxEmitter
	RepoFactory expirerFactory
	BatchSize   int
}

// NewRequestTTLJob builds the cron job that closes auctions past their
// 72-hour window.
func NewRequestTTLJob(params RequestTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("request reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	repoFactory := params.RepoFactory
	if repoFactory == nil {
		repoFactory = defaultExpirerFactory
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultExpireBatchSize
	}
	return &requestTTLJob{
		logg:        params.Logger,
		db:          params.DB,
		reader:      params.Reader,
		outbox:      params.Outbox,
		repoFactory: repoFactory,
		batch:       batch,
		now:         time.Now,
	}, nil
}

type requestTTLJob struct {
	logg        *logger.Logger
	db          txRunner
	reader      expirableRequestReader
	outbox      outboxEmitter
	repoFactory expirerFactory
	batch       int
	now         func() time.Time
}

func (j *requestTTLJob) Name() string { return "request-ttl" }

func (j *requestTTLJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	requests, err := j.reader.FindExpirableRequests(ctx, now, j.batch)
	if err != nil {
		return fmt.Errorf("query expirable requests: %w", err)
	}

	var errs []error
	expired := 0
	for i := range requests {
		if err := j.expireRequest(ctx, &requests[i]); err != nil {
			errs = append(errs, err)
			continue
		}
		expired++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(requests),
		"expired":    expired,
	})
	j.logg.Info(logCtx, "request expiry loop complete")
	return multierr.Combine(errs...)
}

func (j *requestTTLJob) expireRequest(ctx context.Context, request *models.QuoteRequest) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repoFactory(tx)

		current, err := repo.FindRequest(ctx, request.ID)
		if err != nil {
			return fmt.Errorf("reload request: %w", err)
		}
		// the user may have accepted or cancelled since the scan
		if !current.Status.AcceptsQuotes() {
			return nil
		}

		expiredQuotes, err := repo.ExpirePendingQuotes(ctx, request.ID)
		if err != nil {
			return fmt.Errorf("expire quotes: %w", err)
		}
		if err := repo.UpdateRequest(ctx, request.ID, map[string]any{"status": enums.RequestStatusExpired}); err != nil {
			return fmt.Errorf("update request: %w", err)
		}

		now := j.now().UTC()
		event := outbox.DomainEvent{
			EventType:     enums.EventQuoteRequestExpired,
			AggregateType: enums.AggregateQuoteRequest,
			AggregateID:   request.ID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.QuoteRequestExpiredEvent{
				RequestID:     request.ID,
				UserID:        current.UserID,
				ExpiredQuotes: int(expiredQuotes),
				ExpiredAt:     now,
			},
		}
		return j.outbox.EmitIfNotExists(ctx, tx, event)
	})
}
