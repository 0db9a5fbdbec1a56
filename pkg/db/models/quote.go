package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sueworkspace/sungji-drop/pkg/enums"
)

// Quote is a dealer's bid against a quote request. TotalCost24M is computed
// server-side as device_price + monthly_fee*24 - subsidy - additional_discount
// and is the ranking key.
type Quote struct {
	ID                 uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID          uuid.UUID         `gorm:"column:request_id;type:uuid;not null;index"`
	DealerID           uuid.UUID         `gorm:"column:dealer_id;type:uuid;not null;index"`
	DevicePrice        int64             `gorm:"column:device_price;not null"`
	MonthlyFee         int64             `gorm:"column:monthly_fee;not null"`
	Subsidy            int64             `gorm:"column:subsidy;not null;default:0"`
	AdditionalDiscount int64             `gorm:"column:additional_discount;not null;default:0"`
	TotalCost24M       int64             `gorm:"column:total_cost_24m;not null"`
	Message            *string           `gorm:"column:message"`
	Status             enums.QuoteStatus `gorm:"column:status;type:quote_status;not null;default:'pending'"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Dealer *Dealer `gorm:"foreignKey:DealerID"`
}
