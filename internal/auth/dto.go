package auth

import (
	"github.com/sueworkspace/sungji-drop/internal/users"
)

// RegisterRequest captures the email/password sign-up payload.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Nickname string  `json:"nickname" validate:"required"`
	Phone    *string `json:"phone,omitempty"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OTPRequest asks for a sign-in code to be issued for a phone number.
type OTPRequest struct {
	Phone string `json:"phone" validate:"required,min=9,max=20"`
}

// OTPVerifyRequest redeems a previously issued sign-in code.
type OTPVerifyRequest struct {
	Phone string `json:"phone" validate:"required,min=9,max=20"`
	Code  string `json:"code" validate:"required"`
}

// LoginResponse contains the tokens and user produced by a successful sign-in.
type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	User         *users.UserDTO  `json:"user"`
	Dealer       *DealerSummary  `json:"dealer,omitempty"`
	NeedsSetup   bool            `json:"needs_setup"`
}

// DealerSummary is the dealer context attached to a dealer sign-in.
type DealerSummary struct {
	ID        string `json:"id"`
	StoreName string `json:"store_name"`
}

// OTPIssueResponse acknowledges an issued code. The code itself is only
// echoed in dev so local clients can complete the flow without an SMS bridge.
type OTPIssueResponse struct {
	Status    string `json:"status"`
	ExpiresIn int    `json:"expires_in_seconds"`
	DevCode   string `json:"dev_code,omitempty"`
}
