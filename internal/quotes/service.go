package quotes

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/config"
	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
	"github.com/sueworkspace/sungji-drop/pkg/logger"
	"github.com/sueworkspace/sungji-drop/pkg/outbox"
	"github.com/sueworkspace/sungji-drop/pkg/outbox/payloads"
	"github.com/sueworkspace/sungji-drop/pkg/pagination"
)

// Service exposes the reverse-auction operations used by the HTTP layer.
type Service interface {
	CreateRequest(ctx context.Context, userID uuid.UUID, req CreateRequestRequest) (*RequestDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*RequestListResponse, error)
	Get(ctx context.Context, userID uuid.UUID, requestID uuid.UUID) (*RequestDetailDTO, error)
	Cancel(ctx context.Context, userID uuid.UUID, requestID uuid.UUID) (*RequestDTO, error)
	Submit(ctx context.Context, dealerID uuid.UUID, req SubmitQuoteRequest) (*QuoteDTO, error)
	Accept(ctx context.Context, userID uuid.UUID, quoteID uuid.UUID) (*AcceptResponse, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type deviceReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Device, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type realtimePublisher interface {
	PublishRequestUpdate(ctx context.Context, userID uuid.UUID, payload any) error
}

type requestSeeder interface {
	Seed(ctx context.Context, request *models.QuoteRequest) error
}

type dealerNameReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
}

// ServiceParams bundles the quote service dependencies. Seeder is optional;
// when absent new requests simply start with zero quotes.
type ServiceParams struct {
	DB       txRunner
	Repo     *Repository
	Devices  deviceReader
	Dealers  dealerNameReader
	Outbox   outboxEmitter
	Realtime realtimePublisher
	Seeder   requestSeeder
	Logger   *logger.Logger
	Config   config.QuotesConfig
}

type service struct {
	db       txRunner
	repo     *Repository
	devices  deviceReader
	dealers  dealerNameReader
	outbox   outboxEmitter
	realtime realtimePublisher
	seeder   requestSeeder
	logg     *logger.Logger
	cfg      config.QuotesConfig
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("quotes repository is required")
	}
	if params.Devices == nil {
		return nil, fmt.Errorf("device reader is required")
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
	cfg := params.Config
	if cfg.RequestTTL <= 0 {
		cfg.RequestTTL = 72 * time.Hour
	}
	if cfg.ContractTerm <= 0 {
		cfg.ContractTerm = 24
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		devices:  params.Devices,
		dealers:  params.Dealers,
		outbox:   params.Outbox,
		realtime: params.Realtime,
		seeder:   params.Seeder,
		logg:     params.Logger,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// CreateRequest validates the selection against the device catalog, opens the
// auction window, and emits the created event transactionally. The seed call
// afterwards is best-effort.
func (s *service) CreateRequest(ctx context.Context, userID uuid.UUID, req CreateRequestRequest) (*RequestDTO, error) {
	carrier, err := NormalizeCarrier(req.Carrier)
	if err != nil {
		return nil, err
	}

	tradeIn, err := normalizeTradeIn(req.TradeInDevice, req.TradeInCondition)
	if err != nil {
		return nil, err
	}

	device, err := s.devices.FindByID(ctx, req.DeviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "device not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load device")
	}
	if !device.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device is no longer available")
	}
	if !slices.Contains(device.StorageOptions, req.Storage) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "storage option not offered for this device")
	}
	if !slices.Contains(device.ColorOptions, req.Color) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "color option not offered for this device")
	}

	now := s.now().UTC()
	request := &models.QuoteRequest{
		UserID:           userID,
		DeviceID:         req.DeviceID,
		Storage:          req.Storage,
		Color:            req.Color,
		Carrier:          carrier,
		PlanType:         strings.TrimSpace(req.PlanType),
		TradeInDevice:    tradeIn.device,
		TradeInCondition: tradeIn.condition,
		AdditionalNotes:  req.AdditionalNotes,
		Status:           enums.RequestStatusOpen,
		ExpiresAt:        now.Add(s.cfg.RequestTTL),
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).InsertRequest(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert request")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventQuoteRequestCreated,
			AggregateType: enums.AggregateQuoteRequest,
			AggregateID:   request.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.ActorRoleUser)},
			Version:       1,
			OccurredAt:    now,
			Data: payloads.QuoteRequestCreatedEvent{
				RequestID: request.ID,
				UserID:    userID,
				DeviceID:  req.DeviceID,
				Carrier:   carrier,
				ExpiresAt: request.ExpiresAt,
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

	request.Device = device
	if s.seeder != nil {
		if err := s.seeder.Seed(ctx, request); err != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{"request_id": request.ID.String()})
			s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "seed quotes failed")
		}
	}

	dto := requestFromModel(request)
	return &dto, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*RequestListResponse, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	requests, err := s.repo.ListRequestsByUser(ctx, userID, cursor, pagination.LimitWithBuffer(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list requests")
	}

	nextCursor := ""
	if len(requests) > limit {
		requests = requests[:limit]
		last := requests[len(requests)-1]
		nextCursor = pagination.NextCursor(last.CreatedAt, last.ID)
	}

	ids := make([]uuid.UUID, 0, len(requests))
	for i := range requests {
		ids = append(ids, requests[i].ID)
	}
	lowest, err := s.repo.LowestTotals(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load lowest totals")
	}

	dtos := make([]RequestDTO, 0, len(requests))
	for i := range requests {
		dto := requestFromModel(&requests[i])
		if total, ok := lowest[requests[i].ID]; ok {
			dto.LowestTotal = &total
		}
		dtos = append(dtos, dto)
	}

	return &RequestListResponse{Requests: dtos, NextCursor: nextCursor}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID, requestID uuid.UUID) (*RequestDetailDTO, error) {
	request, err := s.loadOwnedRequest(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}

	ranked, err := s.repo.ListQuotesByRequest(ctx, requestID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list quotes")
	}

	detail := &RequestDetailDTO{
		Request: requestFromModel(request),
		Quotes:  make([]QuoteDTO, 0, len(ranked)),
	}
	for i := range ranked {
		detail.Quotes = append(detail.Quotes, quoteFromModel(&ranked[i]))
	}
	return detail, nil
}

// Cancel moves an open or quoted request to cancelled.
func (s *service) Cancel(ctx context.Context, userID uuid.UUID, requestID uuid.UUID) (*RequestDTO, error) {
	request, err := s.loadOwnedRequest(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}
	if !request.Status.AcceptsQuotes() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request can no longer be cancelled")
	}

	if err := s.repo.UpdateRequest(ctx, requestID, map[string]any{"status": enums.RequestStatusCancelled}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel request")
	}
	request.Status = enums.RequestStatusCancelled

	s.publishRequestUpdate(ctx, request)

	dto := requestFromModel(request)
	return &dto, nil
}

func (s *service) loadOwnedRequest(ctx context.Context, userID, requestID uuid.UUID) (*models.QuoteRequest, error) {
	request, err := s.repo.FindRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load request")
	}
	if request.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "request belongs to another user")
	}
	return request, nil
}

// publishRequestUpdate pushes the request's current status to the owner's
// stream. Best-effort: the state change has already committed.
func (s *service) publishRequestUpdate(ctx context.Context, request *models.QuoteRequest) {
	payload := map[string]any{
		"request_id":  request.ID.String(),
		"status":      string(request.Status),
		"quote_count": request.QuoteCount,
	}
	if err := s.realtime.PublishRequestUpdate(ctx, request.UserID, payload); err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"request_id": request.ID.String()})
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "request realtime publish failed")
	}
}

// NormalizeCarrier maps UI labels onto the stored carrier values; the
// canonical values pass through unchanged.
func NormalizeCarrier(raw string) (enums.Carrier, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, "LG U+") {
		trimmed = string(enums.CarrierLGU)
	}
	carrier, err := enums.ParseCarrier(trimmed)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid carrier")
	}
	return carrier, nil
}

type tradeIn struct {
	device    *string
	condition *enums.TradeInGrade
}

// normalizeTradeIn enforces that device and condition come as a pair.
func normalizeTradeIn(device *string, condition *string) (tradeIn, error) {
	var result tradeIn
	hasDevice := device != nil && strings.TrimSpace(*device) != ""
	hasCondition := condition != nil && strings.TrimSpace(*condition) != ""

	if !hasDevice && !hasCondition {
		return result, nil
	}
	if hasDevice != hasCondition {
		return result, pkgerrors.New(pkgerrors.CodeValidation, "trade-in device and condition must be provided together")
	}

	grade, err := enums.ParseTradeInGrade(strings.TrimSpace(*condition))
	if err != nil {
		return result, pkgerrors.New(pkgerrors.CodeValidation, "invalid trade-in condition")
	}
	trimmed := strings.TrimSpace(*device)
	result.device = &trimmed
	result.condition = &grade
	return result, nil
}
