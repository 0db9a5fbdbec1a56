package stats

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
)

type fakeRequestCounter struct {
	requests  int64
	completed int64
	err       error
}

func (f *fakeRequestCounter) CountRequestsByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return f.requests, f.err
}

func (f *fakeRequestCounter) CountCompletedByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return f.completed, f.err
}

type fakeChatCounter struct {
	active int64
}

func (f *fakeChatCounter) CountActiveRoomsForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return f.active, nil
}

func TestSummaryAggregatesCounters(t *testing.T) {
	svc, err := NewService(&fakeRequestCounter{requests: 5, completed: 2}, &fakeChatCounter{active: 3})
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(5), summary.RequestCount)
	assert.Equal(t, int64(2), summary.CompletedCount)
	assert.Equal(t, int64(3), summary.ActiveChatCount)
}

func TestSummarySurfacesCounterErrors(t *testing.T) {
	svc, err := NewService(&fakeRequestCounter{err: assert.AnError}, &fakeChatCounter{})
	require.NoError(t, err)

	_, err = svc.Summary(context.Background(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInternal, typed.Code())
}
