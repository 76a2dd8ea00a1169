package http

import (
	"errors"
	"net/http"

	"github.com/Noctuaa/coach-appointment-manager/internal/auth/service"
	"github.com/Noctuaa/coach-appointment-manager/pkg/httpx"
)

type RefreshHandler struct {
	SessionService *service.SessionService
	SecureCookies  bool
}

type refreshResponse struct {
	Message   string `json:"message"`
	CSRFToken string `json:"csrfToken"`
}

// ServeHTTP exchanges a valid refresh cookie for a new access token bound to
// a fresh CSRF token. The refresh cookie itself is left untouched; it stays
// valid until its own expiry.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	refreshToken := cookieValue(r, RefreshTokenCookie)
	if refreshToken == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{
			"message": "Refresh token manquant",
		})
		return
	}

	tokens, err := h.SessionService.Refresh(r.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{
				"message": "Refresh token invalide",
			})
			return
		}
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Erreur lors de l'authentification",
		})
		return
	}

	httpx.SetSessionCookie(w, AccessTokenCookie, tokens.AccessToken,
		h.SessionService.Tokens.AccessTTL, h.SecureCookies)

	httpx.WriteJSON(w, http.StatusOK, refreshResponse{
		Message:   "Token rafraîchi avec succès",
		CSRFToken: tokens.CSRFToken,
	})
}
