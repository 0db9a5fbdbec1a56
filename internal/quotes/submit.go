package quotes

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/db"
	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
	"github.com/sueworkspace/sungji-drop/pkg/outbox"
	"github.com/sueworkspace/sungji-drop/pkg/outbox/payloads"
)

// Submit records a dealer's bid against an open request. The quote insert,
// the request status bump, and the event emit share one transaction.
func (s *service) Submit(ctx context.Context, dealerID uuid.UUID, req SubmitQuoteRequest) (*QuoteDTO, error) {
	if req.DevicePrice < 0 || req.MonthlyFee < 0 || req.Subsidy < 0 || req.AdditionalDiscount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price components must not be negative")
	}

	dealer, err := s.dealers.FindByID(ctx, dealerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dealer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load dealer")
	}
	if !dealer.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dealer account is inactive")
	}

	total := TotalCost(req.DevicePrice, req.MonthlyFee, req.Subsidy, req.AdditionalDiscount, s.cfg.ContractTerm)

	var message *string
	if req.Message != nil {
		if trimmed := strings.TrimSpace(*req.Message); trimmed != "" {
			message = &trimmed
		}
	}

	now := s.now().UTC()
	quote := &models.Quote{
		RequestID:          req.RequestID,
		DealerID:           dealerID,
		DevicePrice:        req.DevicePrice,
		MonthlyFee:         req.MonthlyFee,
		Subsidy:            req.Subsidy,
		AdditionalDiscount: req.AdditionalDiscount,
		TotalCost24M:       total,
		Message:            message,
		Status:             enums.QuoteStatusPending,
	}

	var request *models.QuoteRequest
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		request, err = repo.FindRequest(ctx, req.RequestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load request")
		}
		if !request.Status.AcceptsQuotes() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request is no longer accepting quotes")
		}
		if now.After(request.ExpiresAt) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request has expired")
		}

		if err := repo.InsertQuote(ctx, quote); err != nil {
			if db.IsUniqueViolation(err, "ux_quotes_request_dealer") {
				return pkgerrors.New(pkgerrors.CodeConflict, "dealer already quoted this request")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert quote")
		}

		updates := map[string]any{"quote_count": gorm.Expr("quote_count + 1")}
		if request.Status == enums.RequestStatusOpen {
			updates["status"] = enums.RequestStatusQuoted
			request.Status = enums.RequestStatusQuoted
		}
		if err := repo.UpdateRequest(ctx, request.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update request")
		}
		request.QuoteCount++

		event := outbox.DomainEvent{
			EventType:     enums.EventQuoteSubmitted,
			AggregateType: enums.AggregateQuote,
			AggregateID:   quote.ID,
			Actor:         &outbox.ActorRef{UserID: dealer.UserID, DealerID: &dealerID, Role: string(enums.ActorRoleDealer)},
			Version:       1,
			OccurredAt:    now,
			Data: payloads.QuoteSubmittedEvent{
				QuoteID:      quote.ID,
				RequestID:    request.ID,
				RequestOwner: request.UserID,
				DealerID:     dealerID,
				DealerName:   dealer.StoreName,
				TotalCost24M: total,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishRequestUpdate(ctx, request)

	quote.Dealer = dealer
	dto := quoteFromModel(quote)
	return &dto, nil
}

// TotalCost is the 24-month cost of ownership a buyer compares quotes by.
func TotalCost(devicePrice, monthlyFee, subsidy, additionalDiscount int64, termMonths int) int64 {
	return devicePrice + monthlyFee*int64(termMonths) - subsidy - additionalDiscount
}
