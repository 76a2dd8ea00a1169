package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Noctuaa/coach-appointment-manager/internal/auth/service"
	"github.com/Noctuaa/coach-appointment-manager/internal/auth/store"
	"github.com/Noctuaa/coach-appointment-manager/pkg/httpx"
	"github.com/Noctuaa/coach-appointment-manager/pkg/slogx"
)

// sessionResponse is the body for every session middleware rejection. The
// shape is part of the client contract: isAuthenticated and refresh drive the
// front-end's silent-refresh loop.
type sessionResponse struct {
	Message         string `json:"message"`
	IsAuthenticated *bool  `json:"isAuthenticated,omitempty"`
	Refresh         bool   `json:"refresh,omitempty"`
}

func boolPtr(b bool) *bool { return &b }

// RequireSession authenticates the request against the session cookies and
// the CSRF header, in a strict order so every client state gets a stable
// answer:
//
//  1. no refresh cookie at all: the client has no session, re-login.
//  2. refresh cookie but no access cookie or no CSRF header: the access
//     token is gone (expired cookie, fresh tab), the client should refresh.
//  3. access token present: malformed is hostile, expired or CSRF mismatch
//     sends the client through the refresh flow.
//  4. token valid: load the user and attach it to the context.
func RequireSession(tokens *service.TokenService, st store.Store) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			if cookieValue(r, RefreshTokenCookie) == "" {
				httpx.WriteJSON(w, http.StatusUnauthorized, sessionResponse{
					Message:         "Authentification requise",
					IsAuthenticated: boolPtr(false),
				})
				return
			}

			accessToken := cookieValue(r, AccessTokenCookie)
			csrfHeader := csrfHeaderValue(r)
			if accessToken == "" || csrfHeader == "" {
				writeRefreshRequired(w)
				return
			}

			claims, err := tokens.ValidateAccessToken(accessToken)
			if err != nil {
				if errors.Is(err, service.ErrExpiredAccessToken) {
					writeRefreshRequired(w)
					return
				}
				httpx.WriteJSON(w, http.StatusUnauthorized, sessionResponse{
					Message: "Token invalide",
				})
				return
			}

			// The access token is bound to the CSRF token minted with it. A
			// mismatch means the client state is stale, same as expiry.
			if claims.CSRF != csrfHeader {
				writeRefreshRequired(w)
				return
			}

			user, err := st.Users().GetUserByID(ctx, claims.Subject)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					httpx.WriteJSON(w, http.StatusUnauthorized, sessionResponse{
						Message: "Utilisateur non trouvé",
					})
					return
				}
				log.Error("session user lookup failed", slog.String("user_id", claims.Subject), slog.Any("err", err))
				httpx.WriteJSON(w, http.StatusInternalServerError, sessionResponse{
					Message: "Erreur lors de l'authentification",
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(ctx, user)))
		})
	}
}

func writeRefreshRequired(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusUnauthorized, sessionResponse{
		Message:         "Token expiré",
		IsAuthenticated: boolPtr(true),
		Refresh:         true,
	})
}

// RequireRole allows the request through when the context user holds at least
// one of the given role names. Must run after RequireSession.
func RequireRole(names ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				httpx.WriteJSON(w, http.StatusUnauthorized, sessionResponse{
					Message:         "Authentification requise",
					IsAuthenticated: boolPtr(false),
				})
				return
			}

			if !user.HasAnyRole(names...) {
				httpx.WriteJSON(w, http.StatusForbidden, sessionResponse{
					Message: "Accès non autorisé",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
