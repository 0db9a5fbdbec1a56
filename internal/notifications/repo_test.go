package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  body TEXT NOT NULL,
  data TEXT,
  is_read INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func createNotification(t *testing.T, db *gorm.DB, userID uuid.UUID, read bool, createdAt time.Time) *models.Notification {
	t.Helper()
	notification := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      enums.NotificationTypeNewQuote,
		Title:     "새 견적이 도착했어요",
		Body:      "강남휴대폰성지에서 견적을 보냈습니다.",
		IsRead:    read,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(notification).Error)
	return notification
}

func TestMarkReadDistinguishesMissingFromAlreadyRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	notification := createNotification(t, db, userID, false, time.Now().UTC())

	mark, err := repo.MarkRead(ctx, userID, notification.ID)
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.True(t, mark.Updated)

	// second pass: row exists but nothing to update
	mark, err = repo.MarkRead(ctx, userID, notification.ID)
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.False(t, mark.Updated)

	mark, err = repo.MarkRead(ctx, userID, uuid.New())
	require.NoError(t, err)
	assert.False(t, mark.Found)

	// another user's notification looks missing, not forbidden
	mark, err = repo.MarkRead(ctx, uuid.New(), notification.ID)
	require.NoError(t, err)
	assert.False(t, mark.Found)
}

func TestMarkAllReadCountsOnlyUnread(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	now := time.Now().UTC()
	createNotification(t, db, userID, false, now)
	createNotification(t, db, userID, false, now.Add(time.Minute))
	createNotification(t, db, userID, true, now.Add(2*time.Minute))
	createNotification(t, db, uuid.New(), false, now)

	updated, err := repo.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	unread, err := repo.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestListUnreadOnlyWithCursor(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		createNotification(t, db, userID, false, base.Add(time.Duration(i)*time.Minute))
	}
	createNotification(t, db, userID, true, base.Add(10*time.Minute))

	first, next, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 2, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, next)
	assert.True(t, first[0].CreatedAt.After(first[1].CreatedAt))

	second, next, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 2, UnreadOnly: true, Cursor: next})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Nil(t, next)
	for _, n := range second {
		assert.False(t, n.IsRead)
	}
}

func TestDeleteReadOlderThan(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	now := time.Now().UTC()
	createNotification(t, db, userID, true, now.Add(-40*24*time.Hour))
	createNotification(t, db, userID, false, now.Add(-40*24*time.Hour))
	createNotification(t, db, userID, true, now.Add(-time.Hour))

	deleted, err := repo.DeleteReadOlderThan(ctx, db, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&remaining).Error)
	assert.Equal(t, int64(2), remaining)
}
