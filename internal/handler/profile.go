package handler

import (
	"net/http"

	"github.com/hexagonhq/hexagon/internal/ctxkeys"
)

type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// Get returns the resolved local user plus the verified token claims.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	claims := ctxkeys.Claims(r.Context())

	WriteJSON(w, http.StatusOK, map[string]any{
		"local_user": map[string]string{
			"id":        user.ID,
			"email":     user.Email,
			"full_name": user.FullName,
		},
		"token_claims": claims,
	})
}
