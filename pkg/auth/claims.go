package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
// RetailerID is nil until the phone completes profile registration.
type AccessTokenPayload struct {
	Phone      string
	RetailerID *uuid.UUID
	IsAdmin    bool
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	Phone      string     `json:"phone"`
	RetailerID *uuid.UUID `json:"retailer_id,omitempty"`
	IsAdmin    bool       `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}
