package quotes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
	"github.com/sueworkspace/sungji-drop/pkg/pagination"
)

// Repository exposes quote-request and quote persistence operations.
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

func (r *Repository) InsertRequest(ctx context.Context, request *models.QuoteRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// FindRequest loads a request with its device.
func (r *Repository) FindRequest(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error) {
	var request models.QuoteRequest
	err := r.db.WithContext(ctx).
		Preload("Device").
		First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListRequestsByUser pages the caller's requests newest first. Fetches one
// row past the limit so the caller can detect another page.
func (r *Repository) ListRequestsByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.QuoteRequest, error) {
	query := r.db.WithContext(ctx).
		Preload("Device").
		Where("user_id = ?", userID)
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	var requests []models.QuoteRequest
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&requests).Error
	return requests, err
}

// LowestTotals returns the minimum total_cost_24m of live quotes per request.
func (r *Repository) LowestTotals(ctx context.Context, requestIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	if len(requestIDs) == 0 {
		return map[uuid.UUID]int64{}, nil
	}
	type row struct {
		RequestID uuid.UUID
		Lowest    int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Select("request_id, MIN(total_cost_24m) AS lowest").
		Where("request_id IN ?", requestIDs).
		Where("status IN ?", []enums.QuoteStatus{enums.QuoteStatusPending, enums.QuoteStatusAccepted}).
		Group("request_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	lowest := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		lowest[r.RequestID] = r.Lowest
	}
	return lowest, nil
}

func (r *Repository) UpdateRequest(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.QuoteRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// FindExpirableRequests returns open/quoted requests past their deadline.
func (r *Repository) FindExpirableRequests(ctx context.Context, cutoff time.Time, limit int) ([]models.QuoteRequest, error) {
	query := r.db.WithContext(ctx).
		Where("status IN ?", []enums.RequestStatus{enums.RequestStatusOpen, enums.RequestStatusQuoted}).
		Where("expires_at <= ?", cutoff).
		Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var requests []models.QuoteRequest
	err := query.Find(&requests).Error
	return requests, err
}

func (r *Repository) InsertQuote(ctx context.Context, quote *models.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *Repository) FindQuote(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	if err := r.db.WithContext(ctx).First(&quote, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

// ListQuotesByRequest returns a request's quotes ranked by total cost
// ascending with dealer context; index 0 is the best deal.
func (r *Repository) ListQuotesByRequest(ctx context.Context, requestID uuid.UUID) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.WithContext(ctx).
		Preload("Dealer").
		Where("request_id = ?", requestID).
		Order("total_cost_24m ASC").
		Order("created_at ASC").
		Find(&quotes).Error
	return quotes, err
}

func (r *Repository) UpdateQuoteStatus(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// RejectPendingSiblings flips every other pending quote on the request to
// rejected, returning how many were touched.
func (r *Repository) RejectPendingSiblings(ctx context.Context, requestID, acceptedID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("request_id = ? AND id <> ? AND status = ?", requestID, acceptedID, enums.QuoteStatusPending).
		Update("status", enums.QuoteStatusRejected)
	return result.RowsAffected, result.Error
}

// ExpirePendingQuotes flips a request's pending quotes to expired.
func (r *Repository) ExpirePendingQuotes(ctx context.Context, requestID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("request_id = ? AND status = ?", requestID, enums.QuoteStatusPending).
		Update("status", enums.QuoteStatusExpired)
	return result.RowsAffected, result.Error
}

// CountRequestsByUser backs the stats endpoint.
func (r *Repository) CountRequestsByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.QuoteRequest{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// CountCompletedByUser counts requests that reached accepted or completed.
func (r *Repository) CountCompletedByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.QuoteRequest{}).
		Where("user_id = ?", userID).
		Where("status IN ?", []enums.RequestStatus{enums.RequestStatusAccepted, enums.RequestStatusCompleted}).
		Count(&count).Error
	return count, err
}
