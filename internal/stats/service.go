package stats

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
)

// SummaryDTO is the home-screen activity summary for a user.
type SummaryDTO struct {
	RequestCount    int64 `json:"request_count"`
	CompletedCount  int64 `json:"completed_count"`
	ActiveChatCount int64 `json:"active_chat_count"`
}

type requestCounter interface {
	CountRequestsByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountCompletedByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type chatCounter interface {
	CountActiveRoomsForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Service computes per-user marketplace activity counters.
type Service interface {
	Summary(ctx context.Context, userID uuid.UUID) (*SummaryDTO, error)
}

type service struct {
	requests requestCounter
	chats    chatCounter
}

func NewService(requests requestCounter, chats chatCounter) (Service, error) {
	if requests == nil {
		return nil, fmt.Errorf("quotes repository is required")
	}
	if chats == nil {
		return nil, fmt.Errorf("chat repository is required")
	}
	return &service{requests: requests, chats: chats}, nil
}

func (s *service) Summary(ctx context.Context, userID uuid.UUID) (*SummaryDTO, error) {
	requests, err := s.requests.CountRequestsByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count requests")
	}
	completed, err := s.requests.CountCompletedByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count completed")
	}
	chats, err := s.chats.CountActiveRoomsForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active chats")
	}
	return &SummaryDTO{
		RequestCount:    requests,
		CompletedCount:  completed,
		ActiveChatCount: chats,
	}, nil
}
