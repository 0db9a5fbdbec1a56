package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
)

// DeviceDTO is the catalog transport shape.
type DeviceDTO struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	Brand          enums.DeviceBrand `json:"brand"`
	ModelNumber    string            `json:"model_number"`
	StorageOptions []string          `json:"storage_options"`
	ColorOptions   []string          `json:"color_options"`
	ImageURL       *string           `json:"image_url,omitempty"`
	OriginalPrice  int64             `json:"original_price"`
	ReleaseDate    *time.Time        `json:"release_date,omitempty"`
}

// Service defines the read-only catalog behavior.
type Service interface {
	List(ctx context.Context, brand string) ([]DeviceDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*DeviceDTO, error)
}

type deviceRepository interface {
	ListActive(ctx context.Context, brand *enums.DeviceBrand) ([]models.Device, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Device, error)
}

type service struct {
	repo deviceRepository
}

func NewService(repo deviceRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, brand string) ([]DeviceDTO, error) {
	var filter *enums.DeviceBrand
	if trimmed := strings.TrimSpace(brand); trimmed != "" {
		parsed, err := enums.ParseDeviceBrand(trimmed)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid brand filter")
		}
		filter = &parsed
	}

	devices, err := s.repo.ListActive(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list devices")
	}

	dtos := make([]DeviceDTO, 0, len(devices))
	for i := range devices {
		dtos = append(dtos, fromModel(&devices[i]))
	}
	return dtos, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*DeviceDTO, error) {
	device, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "device not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load device")
	}
	dto := fromModel(device)
	return &dto, nil
}

func fromModel(d *models.Device) DeviceDTO {
	return DeviceDTO{
		ID:             d.ID,
		Name:           d.Name,
		Brand:          d.Brand,
		ModelNumber:    d.ModelNumber,
		StorageOptions: append([]string(nil), d.StorageOptions...),
		ColorOptions:   append([]string(nil), d.ColorOptions...),
		ImageURL:       d.ImageURL,
		OriginalPrice:  d.OriginalPrice,
		ReleaseDate:    d.ReleaseDate,
	}
}
