package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
)

const (
	nicknameMinRunes = 2
	nicknameMaxRunes = 12
)

// MeResponse is the profile payload returned to the authenticated user.
// NeedsSetup is true when the profile row is absent or the nickname is empty,
// so clients can route to onboarding without guessing.
type MeResponse struct {
	User       *UserDTO    `json:"user"`
	Profile    *ProfileDTO `json:"profile,omitempty"`
	NeedsSetup bool        `json:"needs_setup"`
}

// UpdateProfileRequest is the profile upsert payload.
type UpdateProfileRequest struct {
	Nickname  string  `json:"nickname" validate:"required"`
	Phone     *string `json:"phone,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Service defines the profile behavior needed by the HTTP layer.
type Service interface {
	Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*ProfileDTO, error)
}

type profileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpsertProfile(ctx context.Context, dto UpsertProfileDTO) (*models.Profile, error)
}

type service struct {
	repo profileRepository
}

// NewService constructs a profile service with the provided repository.
func NewService(repo profileRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	profile, err := s.repo.FindProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Absence is onboarding state, not an error.
			return &MeResponse{User: FromModel(user), NeedsSetup: true}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}

	return &MeResponse{
		User:       FromModel(user),
		Profile:    ProfileFromModel(profile),
		NeedsSetup: strings.TrimSpace(profile.Nickname) == "",
	}, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*ProfileDTO, error) {
	nickname, err := ValidateNickname(req.Nickname)
	if err != nil {
		return nil, err
	}

	profile, err := s.repo.UpsertProfile(ctx, UpsertProfileDTO{
		UserID:    userID,
		Nickname:  nickname,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert profile")
	}
	return ProfileFromModel(profile), nil
}

// ValidateNickname trims the nickname and enforces the 2-12 rune bounds.
// Rune counting keeps multi-byte Hangul nicknames within the same limits the
// clients enforce.
func ValidateNickname(raw string) (string, error) {
	nickname := strings.TrimSpace(raw)
	length := utf8.RuneCountInString(nickname)
	if length < nicknameMinRunes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "nickname must be at least 2 characters")
	}
	if length > nicknameMaxRunes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "nickname must be at most 12 characters")
	}
	return nickname, nil
}
