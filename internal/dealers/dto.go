package dealers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sueworkspace/sungji-drop/pkg/db/models"
)

// DealerDTO is the public dealer reference shape.
type DealerDTO struct {
	ID          uuid.UUID       `json:"id"`
	StoreName   string          `json:"store_name"`
	Region      string          `json:"region"`
	Address     string          `json:"address"`
	Phone       string          `json:"phone"`
	Rating      decimal.Decimal `json:"rating"`
	ReviewCount int             `json:"review_count"`
	IsVerified  bool            `json:"is_verified"`
}

// ReviewDTO is the review transport shape.
type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	QuoteID   uuid.UUID `json:"quote_id"`
	UserID    uuid.UUID `json:"user_id"`
	DealerID  uuid.UUID `json:"dealer_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateReviewRequest is the review submission payload.
type CreateReviewRequest struct {
	QuoteID uuid.UUID `json:"quote_id" validate:"required"`
	Rating  int       `json:"rating" validate:"required,min=1,max=5"`
	Comment *string   `json:"comment,omitempty"`
}

func FromModel(d *models.Dealer) *DealerDTO {
	if d == nil {
		return nil
	}
	return &DealerDTO{
		ID:          d.ID,
		StoreName:   d.StoreName,
		Region:      d.Region,
		Address:     d.Address,
		Phone:       d.Phone,
		Rating:      d.Rating,
		ReviewCount: d.ReviewCount,
		IsVerified:  d.IsVerified,
	}
}

func reviewFromModel(r *models.Review) ReviewDTO {
	return ReviewDTO{
		ID:        r.ID,
		QuoteID:   r.QuoteID,
		UserID:    r.UserID,
		DealerID:  r.DealerID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}
