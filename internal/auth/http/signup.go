package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Noctuaa/coach-appointment-manager/internal/auth/service"
	"github.com/Noctuaa/coach-appointment-manager/pkg/httpx"
	"github.com/Noctuaa/coach-appointment-manager/pkg/slogx"
)

type SignupHandler struct {
	SignupService *service.SignupService
}

type signupRequest struct {
	Email           string `json:"email"`
	Firstname       string `json:"firstname"`
	Lastname        string `json:"lastname"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
}

type signupResponse struct {
	User signupUser `json:"user"`
}

type signupUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Role      string `json:"role"`
}

// ServeHTTP creates a new account. Role lookup, user insert and role
// attachment are atomic; a duplicate email or unknown role rolls the whole
// thing back.
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"message": "Requête invalide",
		})
		return
	}

	if errs := validateSignup(req); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	role := req.Role
	if role == "" {
		role = "user"
	}

	user, err := h.SignupService.Register(ctx, service.SignupParams{
		Email:     req.Email,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Password:  req.Password,
		RoleName:  role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateEmail):
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{
				"message": "Il existe déjà un compte associé à cette adresse e-mail.",
			})
		case errors.Is(err, service.ErrRoleNotFound):
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{
				"message": "Erreur lors de la création de l'utilisateur",
				"error":   "Rôle non trouvé",
			})
		default:
			log.Error("signup failed", slog.Any("err", err))
			httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{
				"message": "Erreur lors de la création de l'utilisateur",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, signupResponse{
		User: signupUser{
			ID:        user.ID,
			Email:     user.Email,
			Firstname: user.Firstname,
			Lastname:  user.Lastname,
			Role:      role,
		},
	})
}
