package http

import (
	"context"

	"github.com/Noctuaa/coach-appointment-manager/internal/auth/domain"
)

type ctxKeyUser struct{}

// withUser attaches the authenticated user to the request context.
func withUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser{}, u)
}

// UserFromContext returns the authenticated user placed in the context by the
// session middleware.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxKeyUser{}).(domain.User)
	return u, ok
}
