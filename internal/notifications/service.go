package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sueworkspace/sungji-drop/pkg/config"
	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
	"github.com/sueworkspace/sungji-drop/pkg/pagination"
	"github.com/sueworkspace/sungji-drop/pkg/types"
)

// NotificationDTO is the notification transport shape.
type NotificationDTO struct {
	ID        uuid.UUID              `json:"id"`
	Type      enums.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Data      types.JSONMap          `json:"data,omitempty"`
	IsRead    bool                   `json:"is_read"`
	CreatedAt time.Time              `json:"created_at"`
}

// ListResponse is a cursor page of notifications plus the caller's unread
// total, which the client badges with.
type ListResponse struct {
	Notifications []NotificationDTO `json:"notifications"`
	UnreadCount   int64             `json:"unread_count"`
	NextCursor    string            `json:"next_cursor,omitempty"`
}

// ListQuery carries the list filters from the controller.
type ListQuery struct {
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// MarkAllResponse reports how many rows a mark-all touched.
type MarkAllResponse struct {
	Updated int64 `json:"updated"`
}

// Service exposes the notification inbox operations.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, query ListQuery) (*ListResponse, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (*MarkAllResponse, error)
}

type service struct {
	repo      Repository
	listLimit int
}

func NewService(repo Repository, cfg config.NotificationsConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository is required")
	}
	listLimit := cfg.ListLimit
	if listLimit <= 0 {
		listLimit = 50
	}
	return &service{repo: repo, listLimit: listLimit}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, query ListQuery) (*ListResponse, error) {
	cursor, err := pagination.ParseCursor(query.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	params := listNotificationsParams{
		UserID:     userID,
		Limit:      pagination.NormalizeLimitCapped(query.Limit, s.listLimit),
		Cursor:     cursor,
		UnreadOnly: query.UnreadOnly,
	}
	rows, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list notifications")
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count unread")
	}

	response := &ListResponse{
		Notifications: make([]NotificationDTO, 0, len(rows)),
		UnreadCount:   unread,
	}
	for i := range rows {
		response.Notifications = append(response.Notifications, fromModel(&rows[i]))
	}
	if next != nil {
		response.NextCursor = pagination.EncodeCursor(*next)
	}
	return response, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	mark, err := s.repo.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark notification read")
	}
	if !mark.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (*MarkAllResponse, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark all read")
	}
	return &MarkAllResponse{Updated: updated}, nil
}

func fromModel(n *models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		Data:      n.Data,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
