package handlers

import (
	"net/http"
	"strings"
	"time"

	"tokenmine/internal/auth"
	"tokenmine/internal/middleware"
	"tokenmine/internal/models"
	"tokenmine/internal/websocket"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) Portfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	balance, err := h.ledger.Get(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load portfolio")
		return
	}
	today, err := h.stats.GetDay(r.Context(), userID, time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load portfolio")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"balance":          balance,
		"mine_count_today": today.MineCount,
	})
}

func (h *Handler) DailyStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	if from, to := query.Get("from"), query.Get("to"); from != "" && to != "" {
		fromDate, err := time.Parse("2006-01-02", from)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		toDate, err := time.Parse("2006-01-02", to)
		if err != nil || toDate.Before(fromDate) {
			respondError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		stats, err := h.stats.Range(r.Context(), userID, fromDate, toDate)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to load stats")
			return
		}
		respondJSON(w, http.StatusOK, stats)
		return
	}
	date := time.Now()
	if raw := query.Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date")
			return
		}
		date = parsed
	}
	stat, err := h.stats.GetDay(r.Context(), userID, date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load stats")
		return
	}
	respondJSON(w, http.StatusOK, stat)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	stats, err := h.stats.GetUserStats(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	kind := chi.URLParam(r, "kind")
	switch kind {
	case models.LogKindMining, models.LogKindSpending, models.LogKindPurification:
	default:
		respondError(w, http.StatusBadRequest, "unknown log kind")
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"), 50)
	entries, err := h.activity.ListByKind(r.Context(), userID, kind, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load logs")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) WSPortfolio(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
