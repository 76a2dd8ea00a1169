package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Noctuaa/coach-appointment-manager/internal/auth/domain"
	"github.com/Noctuaa/coach-appointment-manager/internal/auth/store"
	"github.com/Noctuaa/coach-appointment-manager/pkg/cryptox"
	"github.com/Noctuaa/coach-appointment-manager/pkg/idx"
)

var (
	ErrDuplicateEmail = errors.New("duplicate_email")
	ErrRoleNotFound   = errors.New("role_not_found")
)

// SignupService creates new accounts. Role lookup, user insert and role
// attachment happen in one transaction so a failed step never leaves a
// role-less user behind.
type SignupService struct {
	Store store.Store
}

type SignupParams struct {
	Email     string
	Firstname string
	Lastname  string
	Password  string
	RoleName  string
}

// Register hashes the password, then atomically creates the user and attaches
// the requested role. The duplicate-email check is done twice: a cheap
// pre-check for the common case, and the UNIQUE constraint inside the
// transaction for the race.
func (s *SignupService) Register(ctx context.Context, p SignupParams) (domain.User, error) {
	if _, err := s.Store.Users().GetUserByEmail(ctx, p.Email); err == nil {
		return domain.User{}, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        p.Email,
		Firstname:    p.Firstname,
		Lastname:     p.Lastname,
		PasswordHash: hash,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := tx.Roles().GetRoleByName(ctx, p.RoleName)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRoleNotFound
			}
			return err
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateEmail
			}
			return err
		}

		if err := tx.Users().AttachRole(ctx, user.ID, role.ID); err != nil {
			return err
		}

		user.Roles = []string{role.Name}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}
