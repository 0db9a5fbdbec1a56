package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
)

// Repository exposes read-only device catalog queries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListActive returns active devices, newest release first, optionally
// filtered by brand.
func (r *Repository) ListActive(ctx context.Context, brand *enums.DeviceBrand) ([]models.Device, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if brand != nil {
		query = query.Where("brand = ?", *brand)
	}
	var devices []models.Device
	err := query.
		Order("release_date DESC NULLS LAST").
		Order("name ASC").
		Find(&devices).Error
	return devices, err
}

// FindByID loads a device regardless of active flag; callers decide whether
// inactive devices are acceptable.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Device, error) {
	var device models.Device
	if err := r.db.WithContext(ctx).First(&device, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &device, nil
}
