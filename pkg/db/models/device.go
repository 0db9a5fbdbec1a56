package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sueworkspace/sungji-drop/pkg/enums"
	"github.com/sueworkspace/sungji-drop/pkg/types"
)

// Device is a catalog entry for a phone model open to quote requests.
// OriginalPrice is the factory price in KRW.
type Device struct {
	ID             uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string            `gorm:"column:name;type:text;not null"`
	Brand          enums.DeviceBrand `gorm:"column:brand;type:device_brand;not null"`
	ModelNumber    string            `gorm:"column:model_number;type:text;not null"`
	StorageOptions types.StringArray `gorm:"column:storage_options;type:jsonb;not null"`
	ColorOptions   types.StringArray `gorm:"column:color_options;type:jsonb;not null"`
	ImageURL       *string           `gorm:"column:image_url"`
	OriginalPrice  int64             `gorm:"column:original_price;not null"`
	ReleaseDate    *time.Time        `gorm:"column:release_date;type:date"`
	IsActive       bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
}
