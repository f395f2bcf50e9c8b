package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tokenmine/internal/models"
	"tokenmine/internal/token"
)

func TestMineLogStoreInsert(t *testing.T) {
	ctx := context.Background()
	store := NewMineLogStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO mining_logs") {
				t.Fatalf("unexpected query: %s", query)
			}
			if !strings.Contains(query, "ON CONFLICT (id) DO NOTHING") {
				t.Fatalf("insert must be idempotent on id: %s", query)
			}
			return stubResult{rows: 1}, nil
		},
	})
	inserted, err := store.Insert(ctx, models.MineEvent{
		ID: "evt-1", UserID: "user-1", HabitID: "pushups", Reps: 25,
		Currency: token.Red, Amount: decimal.RequireFromString("2.5"),
		Status: models.MineStatusSuccess, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inserted {
		t.Fatal("expected first insert to report true")
	}
}

func TestMineLogStoreInsertReplay(t *testing.T) {
	ctx := context.Background()
	store := NewMineLogStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			return stubResult{rows: 0}, nil
		},
	})
	inserted, err := store.Insert(ctx, models.MineEvent{ID: "evt-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted {
		t.Fatal("replayed event must not report a fresh insert")
	}
}

func TestCatalogStoreDecrementStock(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "stock = stock - 1") || !strings.Contains(query, "stock > 0") {
				t.Fatalf("decrement must guard against overselling: %s", query)
			}
			return stubResult{rows: 0}, nil
		},
	})
	rows, err := store.DecrementStock(ctx, "item-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected sold-out decrement to touch 0 rows, got %d", rows)
	}
}
