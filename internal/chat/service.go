package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/db"
	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
	"github.com/sueworkspace/sungji-drop/pkg/logger"
	"github.com/sueworkspace/sungji-drop/pkg/outbox"
	"github.com/sueworkspace/sungji-drop/pkg/outbox/payloads"
)

const (
	messageListLimit = 200
	previewMaxRunes  = 80
)

// Caller identifies who is acting on a room: the buyer or the dealer side.
type Caller struct {
	UserID   uuid.UUID
	DealerID *uuid.UUID
	Role     enums.ActorRole
}

func (c Caller) senderType() enums.SenderType {
	if c.Role == enums.ActorRoleDealer && c.DealerID != nil {
		return enums.SenderTypeDealer
	}
	return enums.SenderTypeUser
}

// Service exposes the chat operations used by the HTTP layer.
type Service interface {
	OpenRoom(ctx context.Context, caller Caller, req OpenRoomRequest) (*RoomDTO, error)
	ListRooms(ctx context.Context, caller Caller) ([]RoomDTO, error)
	ListMessages(ctx context.Context, caller Caller, roomID uuid.UUID) ([]MessageDTO, error)
	SendMessage(ctx context.Context, caller Caller, roomID uuid.UUID, req SendMessageRequest) (*MessageDTO, error)
	MarkRead(ctx context.Context, caller Caller, roomID uuid.UUID) error
	AuthorizeRoom(ctx context.Context, caller Caller, roomID uuid.UUID) (*models.ChatRoom, error)
}

type quoteReader interface {
	FindQuote(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	FindRequest(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error)
}

type dealerReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type realtimePublisher interface {
	PublishChatMessage(ctx context.Context, roomID uuid.UUID, payload any) error
}

// ServiceParams bundles the chat service dependencies.
type ServiceParams struct {
	DB       *db.Client
	Repo     *Repository
	Quotes   quoteReader
	Dealers  dealerReader
	Outbox   outboxEmitter
	Realtime realtimePublisher
	Logger   *logger.Logger
}

type service struct {
	db       *db.Client
	repo     *Repository
	quotes   quoteReader
	dealers  dealerReader
	outbox   outboxEmitter
	realtime realtimePublisher
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("chat repository is required")
	}
	if params.Quotes == nil {
		return nil, fmt.Errorf("quote reader is required")
	}
	if params.Dealers == nil {
		return nil, fmt.Errorf("dealer reader is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	if params.Realtime == nil {
		return nil, fmt.Errorf("realtime publisher is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		quotes:   params.Quotes,
		dealers:  params.Dealers,
		outbox:   params.Outbox,
		realtime: params.Realtime,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

// OpenRoom resolves the (quote, user, dealer) triple and returns the room,
// creating it idempotently.
func (s *service) OpenRoom(ctx context.Context, caller Caller, req OpenRoomRequest) (*RoomDTO, error) {
	quote, err := s.quotes.FindQuote(ctx, req.QuoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quote")
	}
	request, err := s.quotes.FindRequest(ctx, quote.RequestID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load request")
	}

	switch caller.senderType() {
	case enums.SenderTypeDealer:
		if *caller.DealerID != quote.DealerID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "quote belongs to another dealer")
		}
	default:
		if caller.UserID != request.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "request belongs to another user")
		}
	}

	room, err := s.repo.GetOrCreateRoom(ctx, quote.ID, request.UserID, quote.DealerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open room")
	}
	dto := roomFromModel(room, caller.senderType())
	return &dto, nil
}

func (s *service) ListRooms(ctx context.Context, caller Caller) ([]RoomDTO, error) {
	var (
		rooms []models.ChatRoom
		err   error
	)
	viewer := caller.senderType()
	if viewer == enums.SenderTypeDealer {
		rooms, err = s.repo.ListRoomsByDealer(ctx, *caller.DealerID)
	} else {
		rooms, err = s.repo.ListRoomsByUser(ctx, caller.UserID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list rooms")
	}

	dtos := make([]RoomDTO, 0, len(rooms))
	for i := range rooms {
		dtos = append(dtos, roomFromModel(&rooms[i], viewer))
	}
	return dtos, nil
}

// AuthorizeRoom loads the room and verifies the caller is a participant.
func (s *service) AuthorizeRoom(ctx context.Context, caller Caller, roomID uuid.UUID) (*models.ChatRoom, error) {
	room, err := s.repo.FindRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "room not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load room")
	}

	switch caller.senderType() {
	case enums.SenderTypeDealer:
		if room.DealerID != *caller.DealerID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a participant of this room")
		}
	default:
		if room.UserID != caller.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a participant of this room")
		}
	}
	return room, nil
}

func (s *service) ListMessages(ctx context.Context, caller Caller, roomID uuid.UUID) ([]MessageDTO, error) {
	if _, err := s.AuthorizeRoom(ctx, caller, roomID); err != nil {
		return nil, err
	}

	messages, err := s.repo.ListMessages(ctx, roomID, messageListLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list messages")
	}
	dtos := make([]MessageDTO, 0, len(messages))
	for i := range messages {
		dtos = append(dtos, messageFromModel(&messages[i]))
	}
	return dtos, nil
}

// SendMessage persists the message and its domain event transactionally.
// The room preview/unread denorm and the realtime publish happen after
// commit and are best-effort: the send has already succeeded, so their
// failures are logged, never surfaced.
func (s *service) SendMessage(ctx context.Context, caller Caller, roomID uuid.UUID, req SendMessageRequest) (*MessageDTO, error) {
	room, err := s.AuthorizeRoom(ctx, caller, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "room is closed")
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content is required")
	}

	messageType := enums.MessageTypeText
	if trimmed := strings.TrimSpace(req.MessageType); trimmed != "" {
		parsed, err := enums.ParseMessageType(trimmed)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid message type")
		}
		messageType = parsed
	}

	sender := caller.senderType()
	recipientID, err := s.counterpartUserID(ctx, room, sender)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		RoomID:      roomID,
		SenderID:    caller.UserID,
		SenderType:  sender,
		Content:     content,
		MessageType: messageType,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).InsertMessage(ctx, message); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert message")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventChatMessageSent,
			AggregateType: enums.AggregateChatRoom,
			AggregateID:   roomID,
			Actor:         &outbox.ActorRef{UserID: caller.UserID, DealerID: caller.DealerID, Role: string(caller.Role)},
			Version:       1,
			OccurredAt:    s.now().UTC(),
			Data: payloads.ChatMessageSentEvent{
				MessageID:   message.ID,
				RoomID:      roomID,
				SenderID:    caller.UserID,
				SenderType:  sender,
				RecipientID: recipientID,
				Preview:     preview(content),
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

	now := s.now().UTC()
	if err := s.repo.TouchRoomOnMessage(ctx, roomID, preview(content), now, sender); err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"room_id": roomID.String(), "message_id": message.ID.String()})
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "chat room denorm update failed")
	}

	dto := messageFromModel(message)
	if err := s.realtime.PublishChatMessage(ctx, roomID, dto); err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"room_id": roomID.String(), "message_id": message.ID.String()})
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "chat realtime publish failed")
	}

	return &dto, nil
}

func (s *service) MarkRead(ctx context.Context, caller Caller, roomID uuid.UUID) error {
	if _, err := s.AuthorizeRoom(ctx, caller, roomID); err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, roomID, caller.senderType()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark read")
	}
	return nil
}

// counterpartUserID resolves the identity that should be notified about a
// new message.
func (s *service) counterpartUserID(ctx context.Context, room *models.ChatRoom, sender enums.SenderType) (uuid.UUID, error) {
	if sender == enums.SenderTypeDealer {
		return room.UserID, nil
	}
	dealer, err := s.dealers.FindByID(ctx, room.DealerID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load dealer")
	}
	return dealer.UserID, nil
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewMaxRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewMaxRunes])
}
