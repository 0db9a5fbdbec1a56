package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sueworkspace/sungji-drop/internal/users"
	"github.com/sueworkspace/sungji-drop/pkg/db/models"
	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
	"github.com/sueworkspace/sungji-drop/pkg/security"
)

// RequestOTP issues a short-lived single-use sign-in code for the phone
// number. Delivery is out of scope here; in dev the code is echoed back so
// local clients can complete the flow.
func (s *service) RequestOTP(ctx context.Context, req OTPRequest) (*OTPIssueResponse, error) {
	phone := normalizePhone(req.Phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}

	code, err := security.GenerateOTPCode(s.otpCfg.CodeLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate code")
	}

	if err := s.otp.Set(ctx, s.otp.OTPCodeKey(phone), code, s.otpCfg.TTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store code")
	}
	if err := s.otp.Del(ctx, s.otp.OTPAttemptsKey(phone)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset attempts")
	}

	resp := &OTPIssueResponse{
		Status:    "sent",
		ExpiresIn: int(s.otpCfg.TTL.Seconds()),
	}
	if s.appCfg.IsDev() {
		resp.DevCode = code
	}
	return resp, nil
}

// VerifyOTP redeems a code, creating the account on first sign-in. The code
// is consumed on success and the attempt counter guards brute force within
// the code's lifetime.
func (s *service) VerifyOTP(ctx context.Context, req OTPVerifyRequest) (*LoginResponse, error) {
	phone := normalizePhone(req.Phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}

	attempts, err := s.otp.IncrWithTTL(ctx, s.otp.OTPAttemptsKey(phone), s.otpCfg.TTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count attempts")
	}
	if s.otpCfg.MaxAttempts > 0 && attempts > int64(s.otpCfg.MaxAttempts) {
		return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many verification attempts")
	}

	stored, err := s.otp.Get(ctx, s.otp.OTPCodeKey(phone))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load code")
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(req.Code))) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired code")
	}

	if err := s.otp.Del(ctx, s.otp.OTPCodeKey(phone), s.otp.OTPAttemptsKey(phone)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume code")
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}
		user, err = s.createPhoneUser(ctx, phone)
		if err != nil {
			return nil, err
		}
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	return s.issueSession(ctx, user)
}

func (s *service) createPhoneUser(ctx context.Context, phone string) (*models.User, error) {
	var created *models.User
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := users.NewRepository(tx).Create(ctx, users.CreateUserDTO{Phone: &phone})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func normalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
