package handlers

import (
	"context"
	"errors"
	"net/http"

	"tokenmine/internal/middleware"
	"tokenmine/internal/models"
	"tokenmine/internal/services"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListInventory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	items, err := h.inventory.List(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load inventory")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) ActivateItem(w http.ResponseWriter, r *http.Request) {
	h.transitionItem(w, r, h.inventory.Activate)
}

func (h *Handler) PauseItem(w http.ResponseWriter, r *http.Request) {
	h.transitionItem(w, r, h.inventory.Pause)
}

func (h *Handler) ResumeItem(w http.ResponseWriter, r *http.Request) {
	h.transitionItem(w, r, h.inventory.Resume)
}

func (h *Handler) StopItem(w http.ResponseWriter, r *http.Request) {
	h.removeItem(w, r, h.inventory.StopEarly)
}

func (h *Handler) ConsumeItem(w http.ResponseWriter, r *http.Request) {
	h.removeItem(w, r, h.inventory.Consume)
}

func (h *Handler) transitionItem(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, itemID string) (models.InventoryItem, error)) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	item, err := op(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondInventoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, itemID string) error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := op(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondInventoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func respondInventoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownItem):
		respondError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, services.ErrInvalidState):
		respondError(w, http.StatusConflict, "item is not in a valid state for that action")
	case errors.Is(err, services.ErrNotTimed):
		respondError(w, http.StatusBadRequest, "item has no duration")
	default:
		respondError(w, http.StatusInternalServerError, "inventory operation failed")
	}
}
