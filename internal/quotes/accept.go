package quotes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/internal/chat"
	"github.com/sueworkspace/sungji-drop/pkg/db"
	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
	"github.com/sueworkspace/sungji-drop/pkg/outbox"
	"github.com/sueworkspace/sungji-drop/pkg/outbox/payloads"
)

// Accept closes the auction around the chosen quote: the quote flips to
// accepted, its pending siblings are rejected, the request is marked
// accepted, and a chat room opens for the pair. All of it commits or none
// of it does.
func (s *service) Accept(ctx context.Context, userID uuid.UUID, quoteID uuid.UUID) (*AcceptResponse, error) {
	var (
		response *AcceptResponse
		accepted *models.QuoteRequest
	)

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		quote, err := repo.FindQuote(ctx, quoteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quote")
		}
		if quote.Status != enums.QuoteStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quote is no longer pending")
		}

		request, err := repo.FindRequest(ctx, quote.RequestID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load request")
		}
		if request.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "request belongs to another user")
		}
		if !request.Status.AcceptsQuotes() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request is no longer open")
		}

		if err := repo.UpdateQuoteStatus(ctx, quoteID, enums.QuoteStatusAccepted); err != nil {
			if db.IsUniqueViolation(err, "ux_quotes_one_accepted_per_request") {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "another quote was already accepted")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "accept quote")
		}
		if _, err := repo.RejectPendingSiblings(ctx, request.ID, quoteID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reject sibling quotes")
		}
		if err := repo.UpdateRequest(ctx, request.ID, map[string]any{"status": enums.RequestStatusAccepted}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update request")
		}
		request.Status = enums.RequestStatusAccepted

		room, err := chat.NewRepository(tx).GetOrCreateRoom(ctx, quoteID, userID, quote.DealerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open chat room")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventQuoteAccepted,
			AggregateType: enums.AggregateQuote,
			AggregateID:   quoteID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.ActorRoleUser)},
			Version:       1,
			OccurredAt:    s.now().UTC(),
			Data: payloads.QuoteAcceptedEvent{
				QuoteID:   quoteID,
				RequestID: request.ID,
				UserID:    userID,
				DealerID:  quote.DealerID,
				RoomID:    room.ID,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit event")
		}

		response = &AcceptResponse{QuoteID: quoteID, RequestID: request.ID, RoomID: room.ID}
		accepted = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishRequestUpdate(ctx, accepted)
	return response, nil
}
