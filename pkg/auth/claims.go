package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sueworkspace/sungji-drop/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
// DealerID is set only for dealer accounts.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	DealerID *uuid.UUID
	Role     enums.ActorRole
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID       `json:"user_id"`
	DealerID *uuid.UUID      `json:"dealer_id,omitempty"`
	Role     enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
