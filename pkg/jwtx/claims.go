package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs for the session protocol. These are the fallbacks when
// the corresponding environment variables are not set.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens
	// issued without "remember me".
	DefaultRefreshTokenTTL = 24 * time.Hour

	// DefaultRememberMeTTL is the default lifetime for refresh tokens
	// issued with "remember me".
	DefaultRememberMeTTL = 30 * 24 * time.Hour
)

// AccessClaims are the claims embedded in a short-lived access token. The
// subject is the user ID; CSRF binds the token to the anti-CSRF value the
// client must echo back in the X-CSRF-Token header.
type AccessClaims struct {
	jwt.RegisteredClaims

	CSRF string `json:"csrf"`
}

// RefreshClaims are the claims embedded in a refresh token. Only the user ID
// travels in it; refresh tokens carry no CSRF binding of their own.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// NewAccessClaims builds access-token claims expiring ttl after now.
func NewAccessClaims(subject, csrfToken string, ttl time.Duration, now time.Time) AccessClaims {
	return AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		CSRF: csrfToken,
	}
}

// NewRefreshClaims builds refresh-token claims expiring ttl after now.
func NewRefreshClaims(subject string, ttl time.Duration, now time.Time) RefreshClaims {
	return RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}
