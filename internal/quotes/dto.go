package quotes

import (
	"time"

	"github.com/google/uuid"

	"github.com/sueworkspace/sungji-drop/internal/catalog"
	"github.com/sueworkspace/sungji-drop/internal/dealers"
	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
)

// CreateRequestRequest is the quote-request creation payload. Carrier accepts
// both the stored value and the UI label (e.g. "LG U+").
type CreateRequestRequest struct {
	DeviceID         uuid.UUID `json:"device_id" validate:"required"`
	Storage          string    `json:"storage" validate:"required"`
	Color            string    `json:"color" validate:"required"`
	Carrier          string    `json:"carrier" validate:"required"`
	PlanType         string    `json:"plan_type" validate:"required"`
	TradeInDevice    *string   `json:"trade_in_device,omitempty"`
	TradeInCondition *string   `json:"trade_in_condition,omitempty"`
	AdditionalNotes  *string   `json:"additional_notes,omitempty"`
}

// SubmitQuoteRequest is the dealer bid payload. All amounts are KRW.
type SubmitQuoteRequest struct {
	RequestID          uuid.UUID `json:"request_id" validate:"required"`
	DevicePrice        int64     `json:"device_price" validate:"required,min=0"`
	MonthlyFee         int64     `json:"monthly_fee" validate:"required,min=0"`
	Subsidy            int64     `json:"subsidy" validate:"min=0"`
	AdditionalDiscount int64     `json:"additional_discount" validate:"min=0"`
	Message            *string   `json:"message,omitempty"`
}

// RequestDTO is the quote-request transport shape.
type RequestDTO struct {
	ID               uuid.UUID           `json:"id"`
	UserID           uuid.UUID           `json:"user_id"`
	DeviceID         uuid.UUID           `json:"device_id"`
	Device           *catalog.DeviceDTO  `json:"device,omitempty"`
	Storage          string              `json:"storage"`
	Color            string              `json:"color"`
	Carrier          enums.Carrier       `json:"carrier"`
	PlanType         string              `json:"plan_type"`
	TradeInDevice    *string             `json:"trade_in_device,omitempty"`
	TradeInCondition *enums.TradeInGrade `json:"trade_in_condition,omitempty"`
	AdditionalNotes  *string             `json:"additional_notes,omitempty"`
	Status           enums.RequestStatus `json:"status"`
	ExpiresAt        time.Time           `json:"expires_at"`
	QuoteCount       int                 `json:"quote_count"`
	LowestTotal      *int64              `json:"lowest_total_cost_24m,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

// QuoteDTO is the quote transport shape; Dealer is present on detail reads.
type QuoteDTO struct {
	ID                 uuid.UUID          `json:"id"`
	RequestID          uuid.UUID          `json:"request_id"`
	DealerID           uuid.UUID          `json:"dealer_id"`
	Dealer             *dealers.DealerDTO `json:"dealer,omitempty"`
	DevicePrice        int64              `json:"device_price"`
	MonthlyFee         int64              `json:"monthly_fee"`
	Subsidy            int64              `json:"subsidy"`
	AdditionalDiscount int64              `json:"additional_discount"`
	TotalCost24M       int64              `json:"total_cost_24m"`
	Message            *string            `json:"message,omitempty"`
	Status             enums.QuoteStatus  `json:"status"`
	CreatedAt          time.Time          `json:"created_at"`
}

// RequestDetailDTO is the detail read: the request plus its quotes ranked by
// total cost ascending; index 0 is the best deal.
type RequestDetailDTO struct {
	Request RequestDTO `json:"request"`
	Quotes  []QuoteDTO `json:"quotes"`
}

// RequestListResponse is a cursor page of the caller's requests.
type RequestListResponse struct {
	Requests   []RequestDTO `json:"requests"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// AcceptResponse reports the outcome of accepting a quote: the room the user
// is routed into.
type AcceptResponse struct {
	QuoteID   uuid.UUID `json:"quote_id"`
	RequestID uuid.UUID `json:"request_id"`
	RoomID    uuid.UUID `json:"room_id"`
}

func requestFromModel(r *models.QuoteRequest) RequestDTO {
	dto := RequestDTO{
		ID:               r.ID,
		UserID:           r.UserID,
		DeviceID:         r.DeviceID,
		Storage:          r.Storage,
		Color:            r.Color,
		Carrier:          r.Carrier,
		PlanType:         r.PlanType,
		TradeInDevice:    r.TradeInDevice,
		TradeInCondition: r.TradeInCondition,
		AdditionalNotes:  r.AdditionalNotes,
		Status:           r.Status,
		ExpiresAt:        r.ExpiresAt,
		QuoteCount:       r.QuoteCount,
		CreatedAt:        r.CreatedAt,
	}
	if r.Device != nil {
		dto.Device = &catalog.DeviceDTO{
			ID:             r.Device.ID,
			Name:           r.Device.Name,
			Brand:          r.Device.Brand,
			ModelNumber:    r.Device.ModelNumber,
			StorageOptions: append([]string(nil), r.Device.StorageOptions...),
			ColorOptions:   append([]string(nil), r.Device.ColorOptions...),
			ImageURL:       r.Device.ImageURL,
			OriginalPrice:  r.Device.OriginalPrice,
			ReleaseDate:    r.Device.ReleaseDate,
		}
	}
	return dto
}

func quoteFromModel(q *models.Quote) QuoteDTO {
	dto := QuoteDTO{
		ID:                 q.ID,
		RequestID:          q.RequestID,
		DealerID:           q.DealerID,
		DevicePrice:        q.DevicePrice,
		MonthlyFee:         q.MonthlyFee,
		Subsidy:            q.Subsidy,
		AdditionalDiscount: q.AdditionalDiscount,
		TotalCost24M:       q.TotalCost24M,
		Message:            q.Message,
		Status:             q.Status,
		CreatedAt:          q.CreatedAt,
	}
	if q.Dealer != nil {
		dto.Dealer = dealers.FromModel(q.Dealer)
	}
	return dto
}
