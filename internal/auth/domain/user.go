package domain

import (
	"slices"
	"time"
)

// User is the authenticated identity record. Roles holds the names of every
// role attached through the users_roles join table; the session layer only
// ever reads users, it never mutates them.
type User struct {
	ID           string
	Email        string
	Firstname    string
	Lastname     string
	PasswordHash string // argon2id encoded
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasAnyRole reports whether the user holds at least one of the given role
// names. Authorization is permit-on-intersection.
func (u User) HasAnyRole(names ...string) bool {
	for _, name := range names {
		if slices.Contains(u.Roles, name) {
			return true
		}
	}
	return false
}
