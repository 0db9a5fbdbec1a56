package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgAuth "github.com/sueworkspace/sungji-drop/pkg/auth"
	"github.com/sueworkspace/sungji-drop/pkg/config"
	"github.com/sueworkspace/sungji-drop/pkg/db"
	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
	"github.com/sueworkspace/sungji-drop/pkg/security"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	byPhone map[string]*models.User
	profile *models.Profile
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	if u, ok := f.byPhone[phone]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID, _ time.Time) error {
	return nil
}

func (f *fakeUserRepo) FindProfile(_ context.Context, _ uuid.UUID) (*models.Profile, error) {
	if f.profile == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.profile, nil
}

type fakeDealerLookup struct {
	dealer *models.Dealer
}

func (f *fakeDealerLookup) FindByUserID(_ context.Context, _ uuid.UUID) (*models.Dealer, error) {
	if f.dealer == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.dealer, nil
}

type fakeSessionManager struct{}

func (fakeSessionManager) Generate(_ context.Context, _ string) (string, error) {
	return "refresh-token", nil
}

type fakeOTPStore struct {
	values   map[string]string
	attempts int64
}

func (f *fakeOTPStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = value.(string)
	return nil
}

func (f *fakeOTPStore) Get(_ context.Context, key string) (string, error) {
	return f.values[key], nil
}

func (f *fakeOTPStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeOTPStore) IncrWithTTL(_ context.Context, _ string, _ time.Duration) (int64, error) {
	f.attempts++
	return f.attempts, nil
}

func (f *fakeOTPStore) OTPCodeKey(phone string) string     { return "otp:code:" + phone }
func (f *fakeOTPStore) OTPAttemptsKey(phone string) string { return "otp:attempts:" + phone }

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "sungji-drop-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

func newTestService(t *testing.T, userRepo *fakeUserRepo, dealers *fakeDealerLookup, otp *fakeOTPStore) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		DB:             &db.Client{},
		UserRepo:       userRepo,
		DealerRepo:     dealers,
		SessionManager: fakeSessionManager{},
		OTPStore:       otp,
		JWTConfig:      testJWTConfig(),
		OTPConfig:      config.OTPConfig{CodeLength: 6, TTL: 3 * time.Minute, MaxAttempts: 5},
		AppConfig:      config.AppConfig{Env: "dev"},
	})
	require.NoError(t, err)
	return svc
}

func hashFor(t *testing.T, password string) *string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	require.NoError(t, err)
	return &hash
}

func TestLoginSuccess(t *testing.T) {
	email := "buyer@example.com"
	user := &models.User{ID: uuid.New(), Email: &email, PasswordHash: hashFor(t, "hunter2hunter2"), IsActive: true}
	repo := &fakeUserRepo{
		byEmail: map[string]*models.User{email: user},
		profile: &models.Profile{UserID: user.ID, Nickname: "성지킹"},
	}
	svc := newTestService(t, repo, &fakeDealerLookup{}, &fakeOTPStore{})

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Buyer@Example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "refresh-token", resp.RefreshToken)
	assert.False(t, resp.NeedsSetup)
	assert.Nil(t, resp.Dealer)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, enums.ActorRoleUser, claims.Role)
	assert.Nil(t, claims.DealerID)
}

func TestLoginDealerGetsDealerClaims(t *testing.T) {
	email := "dealer@example.com"
	user := &models.User{ID: uuid.New(), Email: &email, PasswordHash: hashFor(t, "hunter2hunter2"), IsActive: true}
	dealer := &models.Dealer{ID: uuid.New(), UserID: user.ID, StoreName: "강남성지텔레콤", IsActive: true}
	repo := &fakeUserRepo{byEmail: map[string]*models.User{email: user}}
	svc := newTestService(t, repo, &fakeDealerLookup{dealer: dealer}, &fakeOTPStore{})

	resp, err := svc.Login(context.Background(), LoginRequest{Email: email, Password: "hunter2hunter2"})
	require.NoError(t, err)
	require.NotNil(t, resp.Dealer)
	assert.Equal(t, dealer.StoreName, resp.Dealer.StoreName)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, enums.ActorRoleDealer, claims.Role)
	require.NotNil(t, claims.DealerID)
	assert.Equal(t, dealer.ID, *claims.DealerID)
}

func TestLoginWrongPassword(t *testing.T) {
	email := "buyer@example.com"
	user := &models.User{ID: uuid.New(), Email: &email, PasswordHash: hashFor(t, "correct-horse"), IsActive: true}
	repo := &fakeUserRepo{byEmail: map[string]*models.User{email: user}}
	svc := newTestService(t, repo, &fakeDealerLookup{}, &fakeOTPStore{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: email, Password: "wrong"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLoginUnknownEmailMatchesWrongPasswordShape(t *testing.T) {
	svc := newTestService(t, &fakeUserRepo{}, &fakeDealerLookup{}, &fakeOTPStore{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
	assert.Equal(t, invalidCredentialsMessage, typed.Message())
}

func TestRequestOTPEchoesCodeInDev(t *testing.T) {
	otp := &fakeOTPStore{}
	svc := newTestService(t, &fakeUserRepo{}, &fakeDealerLookup{}, otp)

	resp, err := svc.RequestOTP(context.Background(), OTPRequest{Phone: "010-1234-5678"})
	require.NoError(t, err)
	assert.Equal(t, "sent", resp.Status)
	assert.Len(t, resp.DevCode, 6)
	assert.Equal(t, resp.DevCode, otp.values["otp:code:01012345678"])
}

func TestVerifyOTPSignsInExistingUser(t *testing.T) {
	phone := "01012345678"
	user := &models.User{ID: uuid.New(), Phone: &phone, IsActive: true}
	repo := &fakeUserRepo{byPhone: map[string]*models.User{phone: user}}
	otp := &fakeOTPStore{values: map[string]string{"otp:code:" + phone: "123456"}}
	svc := newTestService(t, repo, &fakeDealerLookup{}, otp)

	resp, err := svc.VerifyOTP(context.Background(), OTPVerifyRequest{Phone: "010-1234-5678", Code: "123456"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.True(t, resp.NeedsSetup)

	// Code is single-use.
	_, err = svc.VerifyOTP(context.Background(), OTPVerifyRequest{Phone: phone, Code: "123456"})
	require.Error(t, err)
}

func TestVerifyOTPWrongCode(t *testing.T) {
	phone := "01012345678"
	otp := &fakeOTPStore{values: map[string]string{"otp:code:" + phone: "123456"}}
	svc := newTestService(t, &fakeUserRepo{}, &fakeDealerLookup{}, otp)

	_, err := svc.VerifyOTP(context.Background(), OTPVerifyRequest{Phone: phone, Code: "654321"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestVerifyOTPAttemptCap(t *testing.T) {
	phone := "01012345678"
	otp := &fakeOTPStore{values: map[string]string{"otp:code:" + phone: "123456"}, attempts: 5}
	svc := newTestService(t, &fakeUserRepo{}, &fakeDealerLookup{}, otp)

	_, err := svc.VerifyOTP(context.Background(), OTPVerifyRequest{Phone: phone, Code: "123456"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeRateLimit, typed.Code())
}
