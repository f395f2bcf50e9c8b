// Package ledger owns token balances. Every mutation runs under a per-user
// lock and only reports success once the backing store has acknowledged the
// write; on a failed sync the in-memory state rolls back, so callers never
// observe balance drift between memory and storage.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"tokenmine/internal/models"
	"tokenmine/internal/token"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrSyncFailure         = errors.New("balance sync failed")
)

// BalanceStore is the persistence the ledger syncs to.
type BalanceStore interface {
	Get(ctx context.Context, userID string) (models.TokenBalance, error)
	Upsert(ctx context.Context, userID string, balance models.TokenBalance) error
}

type Ledger struct {
	store BalanceStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	cache map[string]models.TokenBalance
}

func New(store BalanceStore) *Ledger {
	return &Ledger{
		store: store,
		locks: make(map[string]*sync.Mutex),
		cache: make(map[string]models.TokenBalance),
	}
}

func (l *Ledger) userLock(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[userID] = lock
	}
	return lock
}

// load returns the cached balance, reading through to the store on first
// access for a user. Callers must hold the user lock.
func (l *Ledger) load(ctx context.Context, userID string) (models.TokenBalance, error) {
	l.mu.Lock()
	balance, ok := l.cache[userID]
	l.mu.Unlock()
	if ok {
		return balance, nil
	}
	balance, err := l.store.Get(ctx, userID)
	if err != nil {
		return models.TokenBalance{}, err
	}
	l.mu.Lock()
	l.cache[userID] = balance
	l.mu.Unlock()
	return balance, nil
}

func (l *Ledger) put(userID string, balance models.TokenBalance) {
	l.mu.Lock()
	l.cache[userID] = balance
	l.mu.Unlock()
}

// Get returns the user's current balances.
func (l *Ledger) Get(ctx context.Context, userID string) (models.TokenBalance, error) {
	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return l.load(ctx, userID)
}

// Credit adds amount to one currency. Black credits must be whole units.
func (l *Ledger) Credit(ctx context.Context, userID string, currency token.Currency, amount decimal.Decimal) (models.TokenBalance, error) {
	return l.mutate(ctx, userID, func(balance models.TokenBalance) (models.TokenBalance, error) {
		return apply(balance, currency, amount)
	})
}

// Debit removes amount from one currency, failing with
// ErrInsufficientBalance if the holdings do not cover it.
func (l *Ledger) Debit(ctx context.Context, userID string, currency token.Currency, amount decimal.Decimal) (models.TokenBalance, error) {
	return l.mutate(ctx, userID, func(balance models.TokenBalance) (models.TokenBalance, error) {
		if balance.Of(currency).LessThan(amount) {
			return balance, ErrInsufficientBalance
		}
		return apply(balance, currency, amount.Neg())
	})
}

// TransmuteAll moves the entire balance of one currency into another as a
// single atomic step. It returns the amount moved, which is zero when there
// was nothing to transmute.
func (l *Ledger) TransmuteAll(ctx context.Context, userID string, from, to token.Currency) (decimal.Decimal, models.TokenBalance, error) {
	var moved decimal.Decimal
	balance, err := l.mutate(ctx, userID, func(balance models.TokenBalance) (models.TokenBalance, error) {
		moved = balance.Of(from)
		if moved.Sign() <= 0 {
			moved = decimal.Zero
			return balance, nil
		}
		drained, err := apply(balance, from, moved.Neg())
		if err != nil {
			return balance, err
		}
		return apply(drained, to, moved)
	})
	if err != nil {
		return decimal.Zero, models.TokenBalance{}, err
	}
	return moved, balance, nil
}

func (l *Ledger) mutate(ctx context.Context, userID string, fn func(models.TokenBalance) (models.TokenBalance, error)) (models.TokenBalance, error) {
	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	before, err := l.load(ctx, userID)
	if err != nil {
		return models.TokenBalance{}, err
	}
	after, err := fn(before)
	if err != nil {
		return models.TokenBalance{}, err
	}
	l.put(userID, after)
	if err := l.store.Upsert(ctx, userID, after); err != nil {
		l.put(userID, before)
		return models.TokenBalance{}, fmt.Errorf("%w: %v", ErrSyncFailure, err)
	}
	return after, nil
}

func apply(balance models.TokenBalance, currency token.Currency, delta decimal.Decimal) (models.TokenBalance, error) {
	switch currency {
	case token.Red:
		next := balance.Red.Add(delta)
		if next.Sign() < 0 {
			return balance, ErrInsufficientBalance
		}
		balance.Red = next
	case token.Gold:
		next := balance.Gold.Add(delta)
		if next.Sign() < 0 {
			return balance, ErrInsufficientBalance
		}
		balance.Gold = next
	case token.Black:
		if !delta.IsInteger() {
			return balance, ErrInvalidAmount
		}
		next := balance.Black + delta.IntPart()
		if next < 0 {
			return balance, ErrInsufficientBalance
		}
		balance.Black = next
	default:
		return balance, token.ErrUnknownCurrency
	}
	return balance, nil
}
