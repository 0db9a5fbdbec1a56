package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/logger"
)

type fakeCleanupRepo struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (f *fakeCleanupRepo) DeleteReadOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.deleted, f.err
}

func TestNotificationCleanupJobUsesRetentionCutoff(t *testing.T) {
	repo := &fakeCleanupRepo{deleted: 4}
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         cronFakeTxRunner{},
		Repository: repo,
		Retention:  7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	start := time.Now().UTC()
	require.NoError(t, job.Run(context.Background()))

	wantCutoff := start.Add(-7 * 24 * time.Hour)
	assert.WithinDuration(t, wantCutoff, repo.cutoff, time.Minute)
}

func TestNotificationCleanupJobDefaultsRetention(t *testing.T) {
	repo := &fakeCleanupRepo{}
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         cronFakeTxRunner{},
		Repository: repo,
	})
	require.NoError(t, err)
	require.NoError(t, job.Run(context.Background()))

	wantCutoff := time.Now().UTC().Add(-30 * 24 * time.Hour)
	assert.WithinDuration(t, wantCutoff, repo.cutoff, time.Minute)
}

func TestNotificationCleanupJobWrapsErrors(t *testing.T) {
	repo := &fakeCleanupRepo{err: assert.AnError}
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         cronFakeTxRunner{},
		Repository: repo,
	})
	require.NoError(t, err)

	assert.Error(t, job.Run(context.Background()))
}
