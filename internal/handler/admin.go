package handler

import (
	"log/slog"
	"net/http"

	"github.com/hexagonhq/hexagon/internal/service"
)

type AdminHandler struct {
	resetService *service.ResetService
}

func NewAdminHandler(resetService *service.ResetService) *AdminHandler {
	return &AdminHandler{
		resetService: resetService,
	}
}

// ResetHabits runs the reset sweep on demand. Same contract as the scheduled
// run: atomic, idempotent, failure surfaces instead of an undercount.
func (h *AdminHandler) ResetHabits(w http.ResponseWriter, r *http.Request) {
	count, err := h.resetService.ResetAll(r.Context())
	if err != nil {
		slog.Error("on-demand habit reset failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "reset failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]int64{"reset": count})
}
