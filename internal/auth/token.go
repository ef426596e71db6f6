package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenClaims represents the claims stored in a session token
type TokenClaims struct {
	UserID    string    `json:"user_id"` // UUID stored as string in token
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// NewTokenService returns the session token implementation named by tokenType
// ("paseto" or "jwt").
func NewTokenService(tokenType string, pasetoKey, jwtSecret []byte) (TokenService, error) {
	switch tokenType {
	case "paseto", "":
		return NewPasetoService(pasetoKey)
	case "jwt":
		return NewJWTService(jwtSecret)
	default:
		return nil, fmt.Errorf("unknown token type %q", tokenType)
	}
}
