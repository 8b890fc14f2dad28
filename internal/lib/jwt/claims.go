// Package jwt implements generation and parsing of the access and refresh
// tokens used by the API.
//
// Access tokens are short-lived and carry the user uid and role; refresh
// tokens are longer-lived, carry only the uid and are signed with a separate
// secret. There is no revocation list: a token stays valid until expiry.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims describes the custom data stored in an access token.
type AccessClaims struct {
	UserUID              string `json:"uid"`
	Role                 string `json:"role"`
	jwt.RegisteredClaims        // standard claims (ExpiresAt, IssuedAt, ...)
}

// Maker describes generation and parsing of both token kinds.
type Maker interface {
	GenerateAccessToken(userUID, role string) (string, error)
	GenerateRefreshToken(userUID string) (string, error)
	// ParseAccessToken returns the claims if the token is valid and not expired.
	ParseAccessToken(tokenStr string) (*AccessClaims, error)
	// ParseRefreshToken returns the user uid if the token is valid and not expired.
	ParseRefreshToken(tokenStr string) (string, error)
}

// MakerImpl implements Maker with two HS256 secrets and TTLs.
type MakerImpl struct {
	accessSecret  string
	accessTTL     time.Duration
	refreshSecret string
	refreshTTL    time.Duration
}

// NewMaker creates a MakerImpl from the configured secrets and lifetimes.
func NewMaker(accessSecret string, accessTTL time.Duration, refreshSecret string, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		accessSecret:  accessSecret,
		accessTTL:     accessTTL,
		refreshSecret: refreshSecret,
		refreshTTL:    refreshTTL,
	}
}
