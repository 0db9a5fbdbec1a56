package dealers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/db"
	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
	"github.com/sueworkspace/sungji-drop/pkg/outbox"
)

type noopEmitter struct{}

func (noopEmitter) Emit(_ context.Context, _ *gorm.DB, _ outbox.DomainEvent) error { return nil }

func TestRecomputeRating(t *testing.T) {
	cases := []struct {
		name    string
		current string
		count   int
		added   int
		want    string
	}{
		{name: "first review", current: "0", count: 0, added: 4, want: "4"},
		{name: "average drops", current: "4.5", count: 2, added: 3, want: "4"},
		{name: "rounded to two places", current: "4.33", count: 3, added: 5, want: "4.5"},
		{name: "perfect streak holds", current: "5", count: 10, added: 5, want: "5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			current, err := decimal.NewFromString(tc.current)
			require.NoError(t, err)
			want, err := decimal.NewFromString(tc.want)
			require.NoError(t, err)

			got := recomputeRating(current, tc.count, tc.added)
			assert.True(t, want.Equal(got), "want %s got %s", want, got)
		})
	}
}

func TestCreateReviewRejectsOutOfRangeRating(t *testing.T) {
	svc, err := NewService(ServiceParams{
		DB:     &db.Client{},
		Repo:   NewRepository(nil),
		Outbox: noopEmitter{},
	})
	require.NoError(t, err)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.CreateReview(context.Background(), uuid.New(), uuid.New(), CreateReviewRequest{
			QuoteID: uuid.New(),
			Rating:  rating,
		})
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	}
}
