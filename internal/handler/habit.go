package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hexagonhq/hexagon/internal/ctxkeys"
	"github.com/hexagonhq/hexagon/internal/model"
	"github.com/hexagonhq/hexagon/internal/repository"
	"github.com/hexagonhq/hexagon/internal/service"
)

type HabitHandler struct {
	habitService *service.HabitService
}

func NewHabitHandler(habitService *service.HabitService) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
	}
}

type habitRequest struct {
	Title     string `json:"title"`
	Status    string `json:"status"`
	Category  string `json:"category"`
	Progress  int    `json:"progress"`
	Target    int    `json:"target"`
	Frequency string `json:"frequency"`
	Active    *bool  `json:"active"`
}

func (req *habitRequest) toInput() service.HabitInput {
	status := req.Status
	if status == "" {
		status = model.HabitStatusPending
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return service.HabitInput{
		Title:     req.Title,
		Status:    status,
		Category:  req.Category,
		Progress:  req.Progress,
		Target:    req.Target,
		Frequency: req.Frequency,
		Active:    active,
	}
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req habitRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	habit, err := h.habitService.Create(r.Context(), user.ID, req.toInput())
	if err != nil {
		h.writeHabitError(w, err, "create habit", user.ID, "")
		return
	}

	slog.Info("habit created", "habit_id", habit.ID, "user_id", user.ID)
	WriteJSON(w, http.StatusCreated, habit)
}

func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	habits, err := h.habitService.Habits(r.Context(), user.ID, offset, limit)
	if err != nil {
		h.writeHabitError(w, err, "list habits", user.ID, "")
		return
	}

	WriteJSON(w, http.StatusOK, habits)
}

func (h *HabitHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	habitID := r.PathValue("id")

	habit, err := h.habitService.ByID(r.Context(), user.ID, habitID)
	if err != nil {
		h.writeHabitError(w, err, "get habit", user.ID, habitID)
		return
	}

	WriteJSON(w, http.StatusOK, habit)
}

func (h *HabitHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	habitID := r.PathValue("id")

	var req struct {
		Status string `json:"status"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	habit, err := h.habitService.UpdateStatus(r.Context(), user.ID, habitID, req.Status)
	if err != nil {
		h.writeHabitError(w, err, "update habit status", user.ID, habitID)
		return
	}

	WriteJSON(w, http.StatusOK, habit)
}

func (h *HabitHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	habitID := r.PathValue("id")

	habit, err := h.habitService.ToggleActive(r.Context(), user.ID, habitID)
	if err != nil {
		h.writeHabitError(w, err, "toggle habit active", user.ID, habitID)
		return
	}

	slog.Info("habit active flag toggled", "habit_id", habit.ID, "user_id", user.ID, "active", habit.Active)
	WriteJSON(w, http.StatusOK, habit)
}

func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	habitID := r.PathValue("id")

	var req habitRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	habit, err := h.habitService.Update(r.Context(), user.ID, habitID, req.toInput())
	if err != nil {
		h.writeHabitError(w, err, "update habit", user.ID, habitID)
		return
	}

	WriteJSON(w, http.StatusOK, habit)
}

func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	habitID := r.PathValue("id")

	err := h.habitService.Delete(r.Context(), user.ID, habitID)
	if err != nil {
		h.writeHabitError(w, err, "delete habit", user.ID, habitID)
		return
	}

	slog.Info("habit deleted", "habit_id", habitID, "user_id", user.ID)
	WriteJSON(w, http.StatusOK, map[string]string{"message": "habit deleted"})
}

// writeHabitError maps service errors onto status codes. Business violations
// get a descriptive 4xx; anything unexpected is logged with context and
// surfaces as a generic 500.
func (h *HabitHandler) writeHabitError(w http.ResponseWriter, err error, op, userID, habitID string) {
	switch {
	case errors.Is(err, repository.ErrHabitNotFound):
		WriteError(w, http.StatusNotFound, "habit not found")
	case errors.Is(err, repository.ErrDuplicateTitle):
		WriteError(w, http.StatusConflict, "a habit with this title already exists")
	case errors.Is(err, service.ErrCannotCompleteInactive):
		WriteError(w, http.StatusConflict, "cannot mark inactive habit done")
	case errors.Is(err, service.ErrInvalidHabit):
		WriteError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("habit operation failed", "op", op, "error", err, "user_id", userID, "habit_id", habitID)
		WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
