package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
)

// Repository exposes chat room and message persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetOrCreateRoom returns the room keyed by (quote, user, dealer), creating
// it when absent. The insert tolerates the unique-index conflict so two
// racing callers converge on the same row.
func (r *Repository) GetOrCreateRoom(ctx context.Context, quoteID, userID, dealerID uuid.UUID) (*models.ChatRoom, error) {
	room := models.ChatRoom{
		QuoteID:  quoteID,
		UserID:   userID,
		DealerID: dealerID,
		IsActive: true,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "quote_id"},
				{Name: "user_id"},
				{Name: "dealer_id"},
			},
			DoNothing: true,
		}).
		Create(&room).Error
	if err != nil {
		return nil, err
	}

	var persisted models.ChatRoom
	err = r.db.WithContext(ctx).
		Where("quote_id = ? AND user_id = ? AND dealer_id = ?", quoteID, userID, dealerID).
		First(&persisted).Error
	if err != nil {
		return nil, err
	}
	return &persisted, nil
}

func (r *Repository) FindRoom(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRoomsByUser returns the user's active rooms with dealer context,
// freshest conversation first. Rooms that never received a message sort last.
func (r *Repository) ListRoomsByUser(ctx context.Context, userID uuid.UUID) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := r.db.WithContext(ctx).
		Preload("Dealer").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("last_message_at DESC NULLS LAST").
		Order("created_at DESC").
		Find(&rooms).Error
	return rooms, err
}

// ListRoomsByDealer mirrors ListRoomsByUser for the dealer side.
func (r *Repository) ListRoomsByDealer(ctx context.Context, dealerID uuid.UUID) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := r.db.WithContext(ctx).
		Where("dealer_id = ? AND is_active = ?", dealerID, true).
		Order("last_message_at DESC NULLS LAST").
		Order("created_at DESC").
		Find(&rooms).Error
	return rooms, err
}

func (r *Repository) InsertMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListMessages returns the room's messages oldest first.
func (r *Repository) ListMessages(ctx context.Context, roomID uuid.UUID, limit int) ([]models.Message, error) {
	query := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var messages []models.Message
	err := query.Find(&messages).Error
	return messages, err
}

// TouchRoomOnMessage refreshes the denormalized preview columns and bumps the
// counterpart's unread counter.
func (r *Repository) TouchRoomOnMessage(ctx context.Context, roomID uuid.UUID, preview string, at time.Time, sender enums.SenderType) error {
	unreadColumn := "dealer_unread_count"
	if sender == enums.SenderTypeDealer {
		unreadColumn = "user_unread_count"
	}
	return r.db.WithContext(ctx).
		Model(&models.ChatRoom{}).
		Where("id = ?", roomID).
		Updates(map[string]any{
			"last_message":    preview,
			"last_message_at": at,
			unreadColumn:      gorm.Expr(unreadColumn + " + 1"),
		}).Error
}

// MarkRead clears the reader's unread counter and flags the counterpart's
// messages as read.
func (r *Repository) MarkRead(ctx context.Context, roomID uuid.UUID, reader enums.SenderType) error {
	unreadColumn := "user_unread_count"
	counterpart := enums.SenderTypeDealer
	if reader == enums.SenderTypeDealer {
		unreadColumn = "dealer_unread_count"
		counterpart = enums.SenderTypeUser
	}

	if err := r.db.WithContext(ctx).
		Model(&models.ChatRoom{}).
		Where("id = ?", roomID).
		UpdateColumn(unreadColumn, 0).Error; err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("room_id = ? AND sender_type = ? AND is_read = ?", roomID, counterpart, false).
		UpdateColumn("is_read", true).Error
}

// CountActiveRoomsForUser backs the stats endpoint.
func (r *Repository) CountActiveRoomsForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ChatRoom{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	return count, err
}
