package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tokenmine/internal/economy"
	"tokenmine/internal/middleware"
)

type purificationStatus struct {
	Percent         float64   `json:"percent"`
	RemainingMs     int64     `json:"remaining_ms"`
	NextEventAt     time.Time `json:"next_event_at"`
	PreviousEventAt time.Time `json:"previous_event_at"`
	OffsetMs        int64     `json:"offset_ms,omitempty"`
}

func (h *Handler) PurificationStatus(w http.ResponseWriter, r *http.Request) {
	progress := h.engine.Progress()
	respondJSON(w, http.StatusOK, purificationStatus{
		Percent:         progress.Percent,
		RemainingMs:     progress.Remaining.Milliseconds(),
		NextEventAt:     progress.NextEventAt,
		PreviousEventAt: progress.PreviousEventAt,
		OffsetMs:        h.clock.Offset().Milliseconds(),
	})
}

type offsetRequest struct {
	OffsetMs int64 `json:"offset_ms"`
}

// SetPurificationOffset shifts the engine clock for time-travel testing. Only
// routed outside production.
func (h *Handler) SetPurificationOffset(w http.ResponseWriter, r *http.Request) {
	var req offsetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	h.clock.SetOffset(time.Duration(req.OffsetMs) * time.Millisecond)
	h.PurificationStatus(w, r)
}

func (h *Handler) TriggerPurification(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.engine.TriggerNow(r.Context(), userID); err != nil {
		if errors.Is(err, economy.ErrPurificationInFlight) {
			respondError(w, http.StatusConflict, "purification already in flight")
			return
		}
		respondError(w, http.StatusInternalServerError, "purification failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "purified"})
}
