package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed covers structurally broken tokens, wrong algorithms and
	// bad signatures. The caller cannot distinguish these cases and should
	// treat them all as "re-login required".
	ErrMalformed = errors.New("jwtx: malformed token")

	// ErrExpired reports a well-formed, correctly signed token past its
	// expiry. For access tokens this is the signal that triggers the silent
	// refresh flow.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrEmptySecret reports a missing signing secret at construction time.
	ErrEmptySecret = errors.New("jwtx: empty signing secret")
)

// HS256Signer signs and verifies JWTs with a single HMAC-SHA256 secret.
//
// The session protocol uses two independent instances, one per token type, so
// that compromise of one secret cannot forge the other kind of token.
type HS256Signer struct {
	secret []byte
}

// NewHS256Signer creates a signer. The secret must be non-empty; signing with
// an absent secret is a startup error, never a silent fallback.
func NewHS256Signer(secret []byte) (*HS256Signer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &HS256Signer{secret: secret}, nil
}

// Sign turns claims into a compact signed JWT string.
func (s *HS256Signer) Sign(claims jwt.Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// VerifyAccess validates an access token string and returns its claims.
// Expired tokens map to ErrExpired, everything else wrong maps to ErrMalformed.
func (s *HS256Signer) VerifyAccess(tokenStr string) (AccessClaims, error) {
	var claims AccessClaims
	if err := s.verify(tokenStr, &claims); err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

// VerifyRefresh validates a refresh token string and returns its claims.
func (s *HS256Signer) VerifyRefresh(tokenStr string) (RefreshClaims, error) {
	var claims RefreshClaims
	if err := s.verify(tokenStr, &claims); err != nil {
		return RefreshClaims{}, err
	}
	return claims, nil
}

func (s *HS256Signer) verify(tokenStr string, claims jwt.Claims) error {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpired
		}
		return ErrMalformed
	}

	if !token.Valid {
		return ErrMalformed
	}

	return nil
}
