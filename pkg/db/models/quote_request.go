package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sueworkspace/sungji-drop/pkg/enums"
)

// QuoteRequest is a user's reverse-auction posting for a device purchase.
// QuoteCount is denormalized and maintained in the quote submission
// transaction.
type QuoteRequest struct {
	ID               uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	DeviceID         uuid.UUID           `gorm:"column:device_id;type:uuid;not null"`
	Storage          string              `gorm:"column:storage;type:text;not null"`
	Color            string              `gorm:"column:color;type:text;not null"`
	Carrier          enums.Carrier       `gorm:"column:carrier;type:carrier;not null"`
	PlanType         string              `gorm:"column:plan_type;type:text;not null"`
	TradeInDevice    *string             `gorm:"column:trade_in_device"`
	TradeInCondition *enums.TradeInGrade `gorm:"column:trade_in_condition;type:trade_in_grade"`
	AdditionalNotes  *string             `gorm:"column:additional_notes"`
	Status           enums.RequestStatus `gorm:"column:status;type:request_status;not null;default:'open'"`
	ExpiresAt        time.Time           `gorm:"column:expires_at;not null"`
	QuoteCount       int                 `gorm:"column:quote_count;not null;default:0"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Device *Device `gorm:"foreignKey:DeviceID"`
}
