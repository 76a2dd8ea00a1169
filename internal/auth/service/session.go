package service

import (
	"context"
	"fmt"

	"github.com/Noctuaa/coach-appointment-manager/internal/auth/domain"
)

// SessionService glues credential verification to token issuance for the
// login and refresh flows.
type SessionService struct {
	Credentials *CredentialService
	Tokens      *TokenService
}

// Login verifies the credentials and mints a full token set: access token,
// refresh token and the CSRF token the access token is bound to.
func (s *SessionService) Login(ctx context.Context, email, password string, rememberMe bool) (domain.User, domain.SessionTokens, error) {
	user, err := s.Credentials.Verify(ctx, email, password)
	if err != nil {
		return domain.User{}, domain.SessionTokens{}, err
	}

	csrf, err := s.Tokens.NewCSRFToken()
	if err != nil {
		return domain.User{}, domain.SessionTokens{}, fmt.Errorf("mint csrf token: %w", err)
	}

	access, err := s.Tokens.IssueAccessToken(user.ID, csrf)
	if err != nil {
		return domain.User{}, domain.SessionTokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := s.Tokens.IssueRefreshToken(user.ID, rememberMe)
	if err != nil {
		return domain.User{}, domain.SessionTokens{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return user, domain.SessionTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		CSRFToken:    csrf,
	}, nil
}

// Refresh validates the refresh token and issues a new access token bound to
// a fresh CSRF token. The refresh token itself is never rotated; the client
// keeps the one from login until it expires.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (domain.SessionTokens, error) {
	userID, err := s.Tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return domain.SessionTokens{}, err
	}

	csrf, err := s.Tokens.NewCSRFToken()
	if err != nil {
		return domain.SessionTokens{}, fmt.Errorf("mint csrf token: %w", err)
	}

	access, err := s.Tokens.IssueAccessToken(userID, csrf)
	if err != nil {
		return domain.SessionTokens{}, fmt.Errorf("sign access token: %w", err)
	}

	return domain.SessionTokens{
		AccessToken: access,
		CSRFToken:   csrf,
	}, nil
}
