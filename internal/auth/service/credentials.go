package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Noctuaa/coach-appointment-manager/internal/auth/domain"
	"github.com/Noctuaa/coach-appointment-manager/internal/auth/store"
	"github.com/Noctuaa/coach-appointment-manager/pkg/cryptox"
	"github.com/Noctuaa/coach-appointment-manager/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
)

// CredentialService verifies email/password pairs against the user store.
type CredentialService struct {
	Store store.Store
}

// Verify returns the matching user when the email exists and the password
// checks out against the stored Argon2id hash.
//
// Unknown email and wrong password both collapse into ErrInvalidCredentials
// so a caller (and a client probing the API) cannot tell the two apart. Any
// other store failure is surfaced as-is so the handler can answer 500.
func (s *CredentialService) Verify(ctx context.Context, email, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("lookup user by email: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		// A malformed stored hash is indistinguishable from a bad password
		// at the API boundary, but worth logging for operators.
		if !errors.Is(err, cryptox.ErrMismatch) {
			l.Warn("stored password hash rejected", slog.String("user_id", user.ID))
		}
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}
