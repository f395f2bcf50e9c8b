package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"tokenmine/internal/models"
	"tokenmine/internal/token"
)

type stubBalanceStore struct {
	mu       sync.Mutex
	balances map[string]models.TokenBalance
	getErr   error
	upsertErr error
	upserts  int
}

func newStubBalanceStore() *stubBalanceStore {
	return &stubBalanceStore{balances: make(map[string]models.TokenBalance)}
}

func (s *stubBalanceStore) Get(_ context.Context, userID string) (models.TokenBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return models.TokenBalance{}, s.getErr
	}
	return s.balances[userID], nil
}

func (s *stubBalanceStore) Upsert(_ context.Context, userID string, balance models.TokenBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.balances[userID] = balance
	return nil
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestCreditPersistsAndReturnsNewBalance(t *testing.T) {
	store := newStubBalanceStore()
	l := New(store)
	balance, err := l.Credit(context.Background(), "user-1", token.Red, dec("2.5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Red.Equal(dec("2.5")) {
		t.Fatalf("red = %s, want 2.5", balance.Red)
	}
	if !store.balances["user-1"].Red.Equal(dec("2.5")) {
		t.Fatalf("store not synced: %s", store.balances["user-1"].Red)
	}
}

func TestDebitInsufficientLeavesBalanceUnchanged(t *testing.T) {
	store := newStubBalanceStore()
	store.balances["user-1"] = models.TokenBalance{Gold: dec("3")}
	l := New(store)

	_, err := l.Debit(context.Background(), "user-1", token.Gold, dec("5"))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	balance, err := l.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Gold.Equal(dec("3")) {
		t.Fatalf("gold = %s, want 3 (unchanged)", balance.Gold)
	}
}

func TestBlackRequiresWholeUnits(t *testing.T) {
	l := New(newStubBalanceStore())
	if _, err := l.Credit(context.Background(), "user-1", token.Black, dec("0.5")); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	balance, err := l.Credit(context.Background(), "user-1", token.Black, dec("1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance.Black != 1 {
		t.Fatalf("black = %d, want 1", balance.Black)
	}
}

func TestTransmuteAllMovesEntireRedBalance(t *testing.T) {
	store := newStubBalanceStore()
	store.balances["user-1"] = models.TokenBalance{Red: dec("10"), Gold: dec("4")}
	l := New(store)

	moved, balance, err := l.TransmuteAll(context.Background(), "user-1", token.Red, token.Gold)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !moved.Equal(dec("10")) {
		t.Fatalf("moved = %s, want 10", moved)
	}
	if !balance.Red.IsZero() {
		t.Fatalf("red = %s, want 0", balance.Red)
	}
	if !balance.Gold.Equal(dec("14")) {
		t.Fatalf("gold = %s, want 14", balance.Gold)
	}
}

func TestTransmuteAllWithEmptySourceIsNoop(t *testing.T) {
	store := newStubBalanceStore()
	l := New(store)
	moved, _, err := l.TransmuteAll(context.Background(), "user-1", token.Red, token.Gold)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !moved.IsZero() {
		t.Fatalf("moved = %s, want 0", moved)
	}
}

func TestSyncFailureRollsBackMemory(t *testing.T) {
	store := newStubBalanceStore()
	store.balances["user-1"] = models.TokenBalance{Red: dec("1")}
	l := New(store)

	// Prime the cache, then make persistence fail.
	if _, err := l.Get(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.upsertErr = errors.New("connection refused")

	_, err := l.Credit(context.Background(), "user-1", token.Red, dec("2"))
	if !errors.Is(err, ErrSyncFailure) {
		t.Fatalf("expected ErrSyncFailure, got %v", err)
	}
	store.upsertErr = nil
	balance, err := l.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Red.Equal(dec("1")) {
		t.Fatalf("red = %s, want 1 (rolled back)", balance.Red)
	}
}

func TestConcurrentCreditsSerialize(t *testing.T) {
	store := newStubBalanceStore()
	l := New(store)
	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := l.Credit(context.Background(), "user-1", token.Red, dec("0.5")); err != nil {
				t.Errorf("credit failed: %v", err)
			}
		}()
	}
	wg.Wait()
	balance, err := l.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Red.Equal(dec("10")) {
		t.Fatalf("red = %s, want 10 after %d credits of 0.5", balance.Red, workers)
	}
}
