package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tokenmine/internal/models"

	"github.com/shopspring/decimal"
)

func TestPortfolioReturnsBalance(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{
		ledger: stubTokenLedger{
			getFn: func(ctx context.Context, userID string) (models.TokenBalance, error) {
				return models.TokenBalance{
					Red:   decimal.RequireFromString("1.5"),
					Gold:  decimal.RequireFromString("10"),
					Black: 2,
				}, nil
			},
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/portfolio", nil)
	rr := serveWithAuth(t, handler.Portfolio, "user-1", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Balance        models.TokenBalance `json:"balance"`
		MineCountToday int64               `json:"mine_count_today"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Balance.Black != 2 || !resp.Balance.Red.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("unexpected balance: %+v", resp.Balance)
	}
}

func TestDailyStatsSpecificDate(t *testing.T) {
	var gotDate time.Time
	handler := newTestHandler(testHandlerOptions{
		stats: stubStatsStore{
			getDayFn: func(ctx context.Context, userID string, date time.Time) (models.DailyStat, error) {
				gotDate = date
				return models.DailyStat{UserID: userID, Date: date, MineCount: 3}, nil
			},
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/stats/daily?date=2026-08-15", nil)
	rr := serveWithAuth(t, handler.DailyStats, "user-1", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotDate.Format("2006-01-02") != "2026-08-15" {
		t.Fatalf("expected 2026-08-15, got %s", gotDate)
	}
}

func TestDailyStatsRange(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{
		stats: stubStatsStore{
			rangeFn: func(ctx context.Context, userID string, from, to time.Time) ([]models.DailyStat, error) {
				return []models.DailyStat{{UserID: userID}}, nil
			},
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/stats/daily?from=2026-08-01&to=2026-08-15", nil)
	rr := serveWithAuth(t, handler.DailyStats, "user-1", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestDailyStatsRejectsInvertedRange(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{})
	req := httptest.NewRequest(http.MethodGet, "/stats/daily?from=2026-08-15&to=2026-08-01", nil)
	rr := serveWithAuth(t, handler.DailyStats, "user-1", req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestListActivityRejectsUnknownKind(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{})
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/logs/unknown", nil), "kind", "unknown")
	rr := serveWithAuth(t, handler.ListActivity, "user-1", req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestListActivityByKind(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{
		activity: stubActivityStore{
			listByKindFn: func(ctx context.Context, userID, kind string, limit int) ([]models.ActivityEntry, error) {
				if kind != models.LogKindPurification {
					t.Fatalf("unexpected kind: %s", kind)
				}
				return []models.ActivityEntry{{ID: "log-1", Kind: kind}}, nil
			},
		},
	})
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/logs/purification", nil), "kind", "purification")
	rr := serveWithAuth(t, handler.ListActivity, "user-1", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
