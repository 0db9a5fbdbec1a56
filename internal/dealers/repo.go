package dealers

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/db/models"
)

// Repository exposes dealer and review persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	var dealer models.Dealer
	if err := r.db.WithContext(ctx).First(&dealer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dealer, nil
}

// FindByIDLocked loads a dealer row FOR UPDATE so the rating aggregate
// recompute is serialized per dealer.
func (r *Repository) FindByIDLocked(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	var dealer models.Dealer
	err := r.db.WithContext(ctx).
		Raw("SELECT * FROM dealers WHERE id = ? FOR UPDATE", id).
		Scan(&dealer).Error
	if err != nil {
		return nil, err
	}
	if dealer.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &dealer, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Dealer, error) {
	var dealer models.Dealer
	if err := r.db.WithContext(ctx).First(&dealer, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &dealer, nil
}

// ListActive returns active verified dealers; the seed-quote generator draws
// from this pool.
func (r *Repository) ListActive(ctx context.Context, limit int) ([]models.Dealer, error) {
	var dealers []models.Dealer
	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("rating DESC").
		Order("review_count DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&dealers).Error
	return dealers, err
}

func (r *Repository) UpdateRating(ctx context.Context, id uuid.UUID, rating decimal.Decimal, reviewCount int) error {
	return r.db.WithContext(ctx).
		Model(&models.Dealer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"rating":       rating,
			"review_count": reviewCount,
		}).Error
}

func (r *Repository) InsertReview(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// FindQuoteForReview loads the quote a review targets.
func (r *Repository) FindQuoteForReview(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	if err := r.db.WithContext(ctx).First(&quote, "id = ?", quoteID).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *Repository) ListReviews(ctx context.Context, dealerID uuid.UUID, limit int) ([]models.Review, error) {
	var reviews []models.Review
	query := r.db.WithContext(ctx).
		Where("dealer_id = ?", dealerID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&reviews).Error
	return reviews, err
}
