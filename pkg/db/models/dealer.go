package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Dealer is a verified phone retailer. Rating and ReviewCount are aggregates
// recomputed inside the review submission transaction.
type Dealer struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	StoreName      string          `gorm:"column:store_name;type:text;not null"`
	BusinessNumber string          `gorm:"column:business_number;type:text;not null"`
	Region         string          `gorm:"column:region;type:text;not null"`
	Address        string          `gorm:"column:address;type:text;not null"`
	Phone          string          `gorm:"column:phone;type:text;not null"`
	Rating         decimal.Decimal `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	ReviewCount    int             `gorm:"column:review_count;not null;default:0"`
	IsVerified     bool            `gorm:"column:is_verified;not null;default:false"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
