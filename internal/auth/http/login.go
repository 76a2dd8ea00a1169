package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Noctuaa/coach-appointment-manager/internal/auth/domain"
	"github.com/Noctuaa/coach-appointment-manager/internal/auth/service"
	"github.com/Noctuaa/coach-appointment-manager/pkg/httpx"
	"github.com/Noctuaa/coach-appointment-manager/pkg/slogx"
)

type LoginHandler struct {
	SessionService *service.SessionService
	SecureCookies  bool
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type loginResponse struct {
	Message         string      `json:"message"`
	User            userPayload `json:"user"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	CSRFToken       string      `json:"csrfToken"`
}

// userPayload is the user representation shared by login, me and logout
// responses.
type userPayload struct {
	ID        string   `json:"id"`
	Lastname  string   `json:"lastname"`
	Firstname string   `json:"firstname"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
}

func toUserPayload(u domain.User) userPayload {
	return userPayload{
		ID:        u.ID,
		Lastname:  u.Lastname,
		Firstname: u.Firstname,
		Email:     u.Email,
		Roles:     u.Roles,
	}
}

// ServeHTTP verifies the credentials and opens a session: both token cookies
// are set and the CSRF token travels back in the body. Unknown email and
// wrong password produce the exact same answer.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"message": "Requête invalide",
		})
		return
	}

	if errs := validateLogin(req); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	user, tokens, err := h.SessionService.Login(ctx, req.Email, req.Password, req.RememberMe)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{
				"message": "Email ou mot de passe incorrect.",
			})
			return
		}
		log.Error("login failed", slog.Any("err", err))
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Erreur lors de l'authentification",
		})
		return
	}

	httpx.SetSessionCookie(w, AccessTokenCookie, tokens.AccessToken,
		h.SessionService.Tokens.AccessTTL, h.SecureCookies)
	httpx.SetSessionCookie(w, RefreshTokenCookie, tokens.RefreshToken,
		h.SessionService.Tokens.RefreshTokenTTL(req.RememberMe), h.SecureCookies)

	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Message:         "Connexion réussie",
		User:            toUserPayload(user),
		IsAuthenticated: true,
		CSRFToken:       tokens.CSRFToken,
	})
}
