package chat

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

func setupChatTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	chatRooms := `
CREATE TABLE IF NOT EXISTS chat_rooms (
  id TEXT PRIMARY KEY,
  quote_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  dealer_id TEXT NOT NULL,
  last_message TEXT,
  last_message_at DATETIME,
  user_unread_count INTEGER NOT NULL DEFAULT 0,
  dealer_unread_count INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  UNIQUE (quote_id, user_id, dealer_id)
);`
	messages := `
CREATE TABLE IF NOT EXISTS messages (
  id TEXT PRIMARY KEY,
  room_id TEXT NOT NULL,
  sender_id TEXT NOT NULL,
  sender_type TEXT NOT NULL,
  content TEXT NOT NULL,
  message_type TEXT NOT NULL DEFAULT 'text',
  is_read INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	dealers := `
CREATE TABLE IF NOT EXISTS dealers (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  store_name TEXT NOT NULL DEFAULT '',
  business_number TEXT NOT NULL DEFAULT '',
  region TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  rating NUMERIC NOT NULL DEFAULT 0,
  review_count INTEGER NOT NULL DEFAULT 0,
  is_verified INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(chatRooms).Error)
	require.NoError(t, db.Exec(messages).Error)
	require.NoError(t, db.Exec(dealers).Error)
	return db
}

func createRoom(t *testing.T, db *gorm.DB, userID uuid.UUID, lastMessageAt *time.Time) *models.ChatRoom {
	t.Helper()
	room := &models.ChatRoom{
		ID:            uuid.New(),
		QuoteID:       uuid.New(),
		UserID:        userID,
		DealerID:      uuid.New(),
		LastMessageAt: lastMessageAt,
		IsActive:      true,
	}
	require.NoError(t, db.Create(room).Error)
	return room
}

func TestGetOrCreateRoomIsIdempotent(t *testing.T) {
	db := setupChatTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	quoteID, userID, dealerID := uuid.New(), uuid.New(), uuid.New()

	first, err := repo.GetOrCreateRoom(ctx, quoteID, userID, dealerID)
	require.NoError(t, err)

	second, err := repo.GetOrCreateRoom(ctx, quoteID, userID, dealerID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.ChatRoom{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestListRoomsByUserOrdersFreshestFirstNullsLast(t *testing.T) {
	db := setupChatTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	old := time.Now().Add(-2 * time.Hour).UTC()
	fresh := time.Now().Add(-5 * time.Minute).UTC()

	stale := createRoom(t, db, userID, &old)
	silent := createRoom(t, db, userID, nil)
	active := createRoom(t, db, userID, &fresh)
	createRoom(t, db, uuid.New(), &fresh) // another user's room

	rooms, err := repo.ListRoomsByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, active.ID, rooms[0].ID)
	assert.Equal(t, stale.ID, rooms[1].ID)
	assert.Equal(t, silent.ID, rooms[2].ID)
}

func TestTouchRoomOnMessageBumpsCounterpartUnread(t *testing.T) {
	db := setupChatTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	room := createRoom(t, db, uuid.New(), nil)
	at := time.Now().UTC()

	require.NoError(t, repo.TouchRoomOnMessage(ctx, room.ID, "안녕하세요", at, enums.SenderTypeUser))
	require.NoError(t, repo.TouchRoomOnMessage(ctx, room.ID, "네 안녕하세요", at, enums.SenderTypeDealer))
	require.NoError(t, repo.TouchRoomOnMessage(ctx, room.ID, "견적 문의드립니다", at, enums.SenderTypeUser))

	var persisted models.ChatRoom
	require.NoError(t, db.First(&persisted, "id = ?", room.ID).Error)
	assert.Equal(t, 2, persisted.DealerUnreadCount)
	assert.Equal(t, 1, persisted.UserUnreadCount)
	require.NotNil(t, persisted.LastMessage)
	assert.Equal(t, "견적 문의드립니다", *persisted.LastMessage)
}

func TestMarkReadResetsCallerSideOnly(t *testing.T) {
	db := setupChatTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	room := createRoom(t, db, uuid.New(), nil)
	at := time.Now().UTC()
	require.NoError(t, repo.TouchRoomOnMessage(ctx, room.ID, "preview", at, enums.SenderTypeUser))
	require.NoError(t, repo.TouchRoomOnMessage(ctx, room.ID, "preview", at, enums.SenderTypeDealer))

	msg := &models.Message{
		ID:         uuid.New(),
		RoomID:     room.ID,
		SenderID:   uuid.New(),
		SenderType: enums.SenderTypeDealer,
		Content:    "hello",
	}
	require.NoError(t, db.Create(msg).Error)

	require.NoError(t, repo.MarkRead(ctx, room.ID, enums.SenderTypeUser))

	var persisted models.ChatRoom
	require.NoError(t, db.First(&persisted, "id = ?", room.ID).Error)
	assert.Equal(t, 0, persisted.UserUnreadCount)
	assert.Equal(t, 1, persisted.DealerUnreadCount)

	var read models.Message
	require.NoError(t, db.First(&read, "id = ?", msg.ID).Error)
	assert.True(t, read.IsRead)
}

func TestListMessagesAscending(t *testing.T) {
	db := setupChatTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	room := createRoom(t, db, uuid.New(), nil)
	base := time.Now().Add(-time.Hour).UTC()
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		msg := &models.Message{
			ID:         uuid.New(),
			RoomID:     room.ID,
			SenderID:   uuid.New(),
			SenderType: enums.SenderTypeUser,
			Content:    "m",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(msg).Error)
		ids = append(ids, msg.ID)
	}

	messages, err := repo.ListMessages(ctx, room.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for i, msg := range messages {
		assert.Equal(t, ids[i], msg.ID)
	}
}
