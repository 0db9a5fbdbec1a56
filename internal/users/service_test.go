package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
)

type fakeProfileRepo struct {
	user       *models.User
	profile    *models.Profile
	profileErr error
	upserted   *UpsertProfileDTO
}

func (f *fakeProfileRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if f.user == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.user, nil
}

func (f *fakeProfileRepo) FindProfile(_ context.Context, _ uuid.UUID) (*models.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.profile == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.profile, nil
}

func (f *fakeProfileRepo) UpsertProfile(_ context.Context, dto UpsertProfileDTO) (*models.Profile, error) {
	f.upserted = &dto
	return &models.Profile{UserID: dto.UserID, Nickname: dto.Nickname, Phone: dto.Phone, AvatarURL: dto.AvatarURL}, nil
}

func TestValidateNickname(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "trimmed hangul", input: "  성지킹  ", want: "성지킹"},
		{name: "two runes ok", input: "ab", want: "ab"},
		{name: "twelve runes ok", input: "열두글자까지는허용됩니다", want: "열두글자까지는허용됩니다"},
		{name: "empty rejected", input: "   ", wantErr: true},
		{name: "single rune rejected", input: "김", wantErr: true},
		{name: "thirteen runes rejected", input: "열세글자는허용되지않아요요", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateNickname(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				typed := pkgerrors.As(err)
				require.NotNil(t, typed)
				assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMeNeedsSetupWhenProfileAbsent(t *testing.T) {
	userID := uuid.New()
	repo := &fakeProfileRepo{user: &models.User{ID: userID}}
	svc, err := NewService(repo)
	require.NoError(t, err)

	resp, err := svc.Me(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, resp.NeedsSetup)
	assert.Nil(t, resp.Profile)
}

func TestMeNeedsSetupWhenNicknameEmpty(t *testing.T) {
	userID := uuid.New()
	repo := &fakeProfileRepo{
		user:    &models.User{ID: userID},
		profile: &models.Profile{UserID: userID, Nickname: "  "},
	}
	svc, err := NewService(repo)
	require.NoError(t, err)

	resp, err := svc.Me(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, resp.NeedsSetup)
	require.NotNil(t, resp.Profile)
}

func TestMeSurfacesReadErrors(t *testing.T) {
	userID := uuid.New()
	repo := &fakeProfileRepo{
		user:       &models.User{ID: userID},
		profileErr: assert.AnError,
	}
	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = svc.Me(context.Background(), userID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInternal, typed.Code())
}

func TestUpdateProfileTrimsNickname(t *testing.T) {
	userID := uuid.New()
	repo := &fakeProfileRepo{user: &models.User{ID: userID}}
	svc, err := NewService(repo)
	require.NoError(t, err)

	profile, err := svc.UpdateProfile(context.Background(), userID, UpdateProfileRequest{Nickname: " 성지헌터 "})
	require.NoError(t, err)
	assert.Equal(t, "성지헌터", profile.Nickname)
	require.NotNil(t, repo.upserted)
	assert.Equal(t, userID, repo.upserted.UserID)
}
