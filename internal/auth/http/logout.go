package http

import (
	"net/http"

	"github.com/Noctuaa/coach-appointment-manager/pkg/httpx"
)

type LogoutHandler struct {
	SecureCookies bool
}

type logoutResponse struct {
	Message         string `json:"message"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	User            any    `json:"user"`
}

// ServeHTTP closes the session by expiring both cookies. There is no
// server-side token state to revoke, so repeating the call with replayed
// cookies yields the same answer.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.ClearCookie(w, AccessTokenCookie, h.SecureCookies)
	httpx.ClearCookie(w, RefreshTokenCookie, h.SecureCookies)

	httpx.WriteJSON(w, http.StatusOK, logoutResponse{
		Message:         "Déconnexion réussie",
		IsAuthenticated: false,
		User:            nil,
	})
}
