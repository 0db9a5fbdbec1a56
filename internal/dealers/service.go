package dealers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/db"
	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
	"github.com/sueworkspace/sungji-drop/pkg/outbox"
	"github.com/sueworkspace/sungji-drop/pkg/outbox/payloads"
)

const reviewListLimit = 50

// Service exposes dealer reference data and review submission.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*DealerDTO, error)
	CreateReview(ctx context.Context, userID, dealerID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error)
	ListReviews(ctx context.Context, dealerID uuid.UUID) ([]ReviewDTO, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams bundles the dealer service dependencies.
type ServiceParams struct {
	DB     *db.Client
	Repo   *Repository
	Outbox outboxEmitter
}

type service struct {
	db     *db.Client
	repo   *Repository
	outbox outboxEmitter
	now    func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("dealers repository is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		outbox: params.Outbox,
		now:    time.Now,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*DealerDTO, error) {
	dealer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dealer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load dealer")
	}
	return FromModel(dealer), nil
}

// CreateReview inserts the review and recomputes the dealer's rating
// aggregate in one transaction. One review per (quote, user); the unique
// index backs that up.
func (s *service) CreateReview(ctx context.Context, userID, dealerID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	var created *models.Review
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		quote, err := repo.FindQuoteForReview(ctx, req.QuoteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quote")
		}
		if quote.DealerID != dealerID {
			return pkgerrors.New(pkgerrors.CodeValidation, "quote does not belong to this dealer")
		}
		if quote.Status != enums.QuoteStatusAccepted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only accepted deals can be reviewed")
		}

		dealer, err := repo.FindByIDLocked(ctx, dealerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "dealer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock dealer")
		}

		review := &models.Review{
			QuoteID:  req.QuoteID,
			UserID:   userID,
			DealerID: dealerID,
			Rating:   req.Rating,
			Comment:  req.Comment,
		}
		if err := repo.InsertReview(ctx, review); err != nil {
			if db.IsUniqueViolation(err, "idx_reviews_quote_user") {
				return pkgerrors.New(pkgerrors.CodeConflict, "review already submitted for this deal")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert review")
		}

		newCount := dealer.ReviewCount + 1
		newRating := recomputeRating(dealer.Rating, dealer.ReviewCount, req.Rating)
		if err := repo.UpdateRating(ctx, dealerID, newRating, newCount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update rating")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventReviewCreated,
			AggregateType: enums.AggregateDealer,
			AggregateID:   dealerID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.ActorRoleUser)},
			Version:       1,
			OccurredAt:    s.now().UTC(),
			Data: payloads.ReviewCreatedEvent{
				ReviewID:    review.ID,
				DealerID:    dealerID,
				UserID:      userID,
				Rating:      req.Rating,
				ReviewCount: newCount,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit event")
		}

		created = review
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := reviewFromModel(created)
	return &dto, nil
}

func (s *service) ListReviews(ctx context.Context, dealerID uuid.UUID) ([]ReviewDTO, error) {
	reviews, err := s.repo.ListReviews(ctx, dealerID, reviewListLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	dtos := make([]ReviewDTO, 0, len(reviews))
	for i := range reviews {
		dtos = append(dtos, reviewFromModel(&reviews[i]))
	}
	return dtos, nil
}

// recomputeRating folds one new rating into the running average, kept at two
// decimal places to match the numeric(3,2) column.
func recomputeRating(current decimal.Decimal, count, added int) decimal.Decimal {
	total := current.Mul(decimal.NewFromInt(int64(count))).
		Add(decimal.NewFromInt(int64(added)))
	return total.Div(decimal.NewFromInt(int64(count + 1))).Round(2)
}
