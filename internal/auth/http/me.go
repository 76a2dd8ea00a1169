package http

import (
	"net/http"

	"github.com/Noctuaa/coach-appointment-manager/pkg/httpx"
)

type MeHandler struct{}

type meResponse struct {
	IsAuthenticated bool        `json:"isAuthenticated"`
	User            userPayload `json:"user"`
}

// ServeHTTP returns the authenticated user. The session middleware has
// already loaded it into the request context.
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, sessionResponse{
			Message:         "Authentification requise",
			IsAuthenticated: boolPtr(false),
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, meResponse{
		IsAuthenticated: true,
		User:            toUserPayload(user),
	})
}
