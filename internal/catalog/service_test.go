package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
)

type fakeDeviceRepo struct {
	devices   []models.Device
	gotFilter *enums.DeviceBrand
}

func (f *fakeDeviceRepo) ListActive(_ context.Context, brand *enums.DeviceBrand) ([]models.Device, error) {
	f.gotFilter = brand
	return f.devices, nil
}

func (f *fakeDeviceRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Device, error) {
	for i := range f.devices {
		if f.devices[i].ID == id {
			return &f.devices[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func TestListPassesBrandFilter(t *testing.T) {
	repo := &fakeDeviceRepo{devices: []models.Device{{ID: uuid.New(), Name: "Galaxy S25", Brand: enums.DeviceBrandSamsung}}}
	svc, err := NewService(repo)
	require.NoError(t, err)

	devices, err := svc.List(context.Background(), "samsung")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	require.NotNil(t, repo.gotFilter)
	assert.Equal(t, enums.DeviceBrandSamsung, *repo.gotFilter)
}

func TestListRejectsUnknownBrand(t *testing.T) {
	svc, err := NewService(&fakeDeviceRepo{})
	require.NoError(t, err)

	_, err = svc.List(context.Background(), "nokia")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestGetUnknownDeviceIsNotFound(t *testing.T) {
	svc, err := NewService(&fakeDeviceRepo{})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
