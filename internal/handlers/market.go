package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"tokenmine/internal/ledger"
	"tokenmine/internal/middleware"
	"tokenmine/internal/services"
)

func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListActive(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load catalog")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

type purchaseRequest struct {
	ItemID  string `json:"item_id"`
	EventID string `json:"event_id"`
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	result, err := h.market.Purchase(r.Context(), services.PurchaseRequest{
		UserID:  userID,
		ItemID:  req.ItemID,
		EventID: req.EventID,
	})
	switch {
	case err == nil:
		respondJSON(w, http.StatusCreated, result)
	case errors.Is(err, services.ErrUnknownItem):
		respondError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, services.ErrOutOfStock):
		respondError(w, http.StatusConflict, "item out of stock")
	case errors.Is(err, services.ErrDuplicateEvent):
		respondError(w, http.StatusConflict, "purchase already processed")
	case errors.Is(err, ledger.ErrInsufficientBalance):
		respondError(w, http.StatusPaymentRequired, "insufficient balance")
	default:
		respondError(w, http.StatusInternalServerError, "purchase failed")
	}
}
