package service

import (
	"errors"
	"time"

	"github.com/Noctuaa/coach-appointment-manager/pkg/cryptox"
	"github.com/Noctuaa/coach-appointment-manager/pkg/jwtx"
)

var (
	ErrInvalidAccessToken  = errors.New("invalid_access_token")
	ErrExpiredAccessToken  = errors.New("expired_access_token")
	ErrInvalidRefreshToken = errors.New("invalid_refresh_token")
)

// TokenService issues and validates the two session JWTs. Access and refresh
// tokens are signed with separate secrets so one can never be replayed as
// the other.
type TokenService struct {
	AccessSigner  *jwtx.HS256Signer
	RefreshSigner *jwtx.HS256Signer

	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	RememberMeTTL time.Duration

	// Now is the clock; tests override it to freeze or rewind time.
	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// NewCSRFToken mints a fresh random CSRF token for a new or refreshed session.
func (s *TokenService) NewCSRFToken() (string, error) {
	return cryptox.NewCSRFToken()
}

// IssueAccessToken signs a short-lived access token binding the user to the
// given CSRF token.
func (s *TokenService) IssueAccessToken(userID, csrfToken string) (string, error) {
	claims := jwtx.NewAccessClaims(userID, csrfToken, s.AccessTTL, s.now())
	return s.AccessSigner.Sign(claims)
}

// IssueRefreshToken signs a refresh token for the user. With rememberMe the
// longer TTL applies.
func (s *TokenService) IssueRefreshToken(userID string, rememberMe bool) (string, error) {
	claims := jwtx.NewRefreshClaims(userID, s.RefreshTokenTTL(rememberMe), s.now())
	return s.RefreshSigner.Sign(claims)
}

// RefreshTokenTTL returns the lifetime used for the refresh token and its
// cookie, depending on the remember-me choice.
func (s *TokenService) RefreshTokenTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return s.RememberMeTTL
	}
	return s.RefreshTTL
}

// ValidateAccessToken parses and verifies an access token, returning its
// claims. Expiry is reported separately from all other failures because the
// session protocol treats an expired token as refreshable and anything else
// as hostile.
func (s *TokenService) ValidateAccessToken(token string) (jwtx.AccessClaims, error) {
	claims, err := s.AccessSigner.VerifyAccess(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return jwtx.AccessClaims{}, ErrExpiredAccessToken
		}
		return jwtx.AccessClaims{}, ErrInvalidAccessToken
	}
	return claims, nil
}

// ValidateRefreshToken parses and verifies a refresh token and returns the
// subject user id. Expired and malformed tokens are equally unusable here,
// so both map to ErrInvalidRefreshToken.
func (s *TokenService) ValidateRefreshToken(token string) (string, error) {
	claims, err := s.RefreshSigner.VerifyRefresh(token)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}
	return claims.Subject, nil
}
