package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"tokenmine/internal/middleware"
	"tokenmine/internal/services"
	"tokenmine/internal/token"
)

func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	habits, err := h.habits.ListActive(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load habits")
		return
	}
	respondJSON(w, http.StatusOK, habits)
}

type mineRequest struct {
	HabitID  string `json:"habit_id"`
	Reps     int64  `json:"reps"`
	Currency string `json:"currency"`
	EventID  string `json:"event_id"`
}

func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req mineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	currency, err := token.ParseCurrency(req.Currency)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	event, err := h.mining.Mine(r.Context(), services.MineRequest{
		UserID:   userID,
		HabitID:  req.HabitID,
		Reps:     req.Reps,
		Currency: currency,
		EventID:  req.EventID,
	})
	switch {
	case err == nil:
		respondJSON(w, http.StatusCreated, event)
	case errors.Is(err, services.ErrDuplicateEvent):
		// Replays return the stored event so retries are safe for clients.
		respondJSON(w, http.StatusOK, event)
	case errors.Is(err, services.ErrUnknownHabit):
		respondError(w, http.StatusNotFound, "habit not found")
	case errors.Is(err, services.ErrInvalidReps),
		errors.Is(err, services.ErrNotMineable),
		errors.Is(err, services.ErrGoldOnlyHabit):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "mining failed")
	}
}

func (h *Handler) ListMineEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"), 50)
	events, err := h.mineLogs.ListByUser(r.Context(), userID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load mine events")
		return
	}
	respondJSON(w, http.StatusOK, events)
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 500 {
		return fallback
	}
	return limit
}
