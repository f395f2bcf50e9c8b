package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tokenmine/internal/ledger"
	"tokenmine/internal/models"
	"tokenmine/internal/services"
)

func TestPurchaseSuccess(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{
		market: stubMarketService{
			purchaseFn: func(ctx context.Context, req services.PurchaseRequest) (services.PurchaseResult, error) {
				if req.UserID != "user-1" || req.ItemID != "item-1" {
					t.Fatalf("unexpected request: %+v", req)
				}
				return services.PurchaseResult{
					Item:          models.CatalogItem{ID: "item-1"},
					InventoryItem: &models.InventoryItem{ID: "inv-1", Status: models.InventoryInactive},
				}, nil
			},
		},
	})
	body := `{"item_id":"item-1","event_id":"evt-1"}`
	req := httptest.NewRequest(http.MethodPost, "/market/purchase", strings.NewReader(body))
	rr := serveWithAuth(t, handler.Purchase, "user-1", req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestPurchaseInsufficientBalance(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{
		market: stubMarketService{
			purchaseFn: func(ctx context.Context, req services.PurchaseRequest) (services.PurchaseResult, error) {
				return services.PurchaseResult{}, ledger.ErrInsufficientBalance
			},
		},
	})
	body := `{"item_id":"item-1"}`
	req := httptest.NewRequest(http.MethodPost, "/market/purchase", strings.NewReader(body))
	rr := serveWithAuth(t, handler.Purchase, "user-1", req)
	if rr.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rr.Code)
	}
}

func TestPurchaseOutOfStock(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{
		market: stubMarketService{
			purchaseFn: func(ctx context.Context, req services.PurchaseRequest) (services.PurchaseResult, error) {
				return services.PurchaseResult{}, services.ErrOutOfStock
			},
		},
	})
	body := `{"item_id":"item-1"}`
	req := httptest.NewRequest(http.MethodPost, "/market/purchase", strings.NewReader(body))
	rr := serveWithAuth(t, handler.Purchase, "user-1", req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestPurchaseReplayRejected(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{
		market: stubMarketService{
			purchaseFn: func(ctx context.Context, req services.PurchaseRequest) (services.PurchaseResult, error) {
				return services.PurchaseResult{}, services.ErrDuplicateEvent
			},
		},
	})
	body := `{"item_id":"item-1","event_id":"evt-1"}`
	req := httptest.NewRequest(http.MethodPost, "/market/purchase", strings.NewReader(body))
	rr := serveWithAuth(t, handler.Purchase, "user-1", req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}
