package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tokenmine/internal/models"
	"tokenmine/internal/token"
	"tokenmine/internal/websocket"
)

var errNoRows = sql.ErrNoRows

type stubHabitStore struct {
	getByIDFn func(ctx context.Context, habitID string) (models.Habit, error)
}

func (s stubHabitStore) GetByID(ctx context.Context, habitID string) (models.Habit, error) {
	return s.getByIDFn(ctx, habitID)
}

type stubMineLogStore struct {
	insertFn  func(ctx context.Context, event models.MineEvent) (bool, error)
	getByIDFn func(ctx context.Context, userID, eventID string) (models.MineEvent, error)
	mu        sync.Mutex
	events    []models.MineEvent
}

func (s *stubMineLogStore) Insert(ctx context.Context, event models.MineEvent) (bool, error) {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	if s.insertFn == nil {
		return true, nil
	}
	return s.insertFn(ctx, event)
}

func (s *stubMineLogStore) GetByID(ctx context.Context, userID, eventID string) (models.MineEvent, error) {
	if s.getByIDFn == nil {
		return models.MineEvent{ID: eventID, UserID: userID}, nil
	}
	return s.getByIDFn(ctx, userID, eventID)
}

type stubLedger struct {
	creditFn func(ctx context.Context, userID string, currency token.Currency, amount decimal.Decimal) (models.TokenBalance, error)
	debitFn  func(ctx context.Context, userID string, currency token.Currency, amount decimal.Decimal) (models.TokenBalance, error)
	credits  []decimal.Decimal
	debits   []decimal.Decimal
}

func (s *stubLedger) Credit(ctx context.Context, userID string, currency token.Currency, amount decimal.Decimal) (models.TokenBalance, error) {
	s.credits = append(s.credits, amount)
	if s.creditFn == nil {
		return models.TokenBalance{}, nil
	}
	return s.creditFn(ctx, userID, currency, amount)
}

func (s *stubLedger) Debit(ctx context.Context, userID string, currency token.Currency, amount decimal.Decimal) (models.TokenBalance, error) {
	s.debits = append(s.debits, amount)
	if s.debitFn == nil {
		return models.TokenBalance{}, nil
	}
	return s.debitFn(ctx, userID, currency, amount)
}

type stubStatsStore struct {
	mergeMinedFn  func(ctx context.Context, userID string, date time.Time, currency token.Currency, amount decimal.Decimal) error
	mergeBurnedFn func(ctx context.Context, userID string, date time.Time, currency token.Currency, amount decimal.Decimal) error
	devotionalFn  func(ctx context.Context, userID string, reps int64) error
	mined         []decimal.Decimal
	burned        []decimal.Decimal
	devotional    []int64
}

func (s *stubStatsStore) MergeMined(ctx context.Context, userID string, date time.Time, currency token.Currency, amount decimal.Decimal) error {
	s.mined = append(s.mined, amount)
	if s.mergeMinedFn == nil {
		return nil
	}
	return s.mergeMinedFn(ctx, userID, date, currency, amount)
}

func (s *stubStatsStore) MergeBurned(ctx context.Context, userID string, date time.Time, currency token.Currency, amount decimal.Decimal) error {
	s.burned = append(s.burned, amount)
	if s.mergeBurnedFn == nil {
		return nil
	}
	return s.mergeBurnedFn(ctx, userID, date, currency, amount)
}

func (s *stubStatsStore) IncrementDevotional(ctx context.Context, userID string, reps int64) error {
	s.devotional = append(s.devotional, reps)
	if s.devotionalFn == nil {
		return nil
	}
	return s.devotionalFn(ctx, userID, reps)
}

type stubHub struct {
	updates []websocket.PortfolioUpdate
}

func (s *stubHub) BroadcastPortfolio(_ string, update websocket.PortfolioUpdate) {
	s.updates = append(s.updates, update)
}

type stubCatalogStore struct {
	getByIDFn   func(ctx context.Context, itemID string) (models.CatalogItem, error)
	decrementFn func(ctx context.Context, itemID string) (int64, error)
	restored    int
}

func (s *stubCatalogStore) GetByID(ctx context.Context, itemID string) (models.CatalogItem, error) {
	return s.getByIDFn(ctx, itemID)
}

func (s *stubCatalogStore) DecrementStock(ctx context.Context, itemID string) (int64, error) {
	if s.decrementFn == nil {
		return 1, nil
	}
	return s.decrementFn(ctx, itemID)
}

func (s *stubCatalogStore) RestoreStock(ctx context.Context, itemID string) error {
	s.restored++
	return nil
}

type stubActivityLog struct {
	insertFn func(ctx context.Context, entry models.ActivityEntry) (bool, error)
	existsFn func(ctx context.Context, entryID string) (bool, error)
	entries  []models.ActivityEntry
}

func (s *stubActivityLog) Insert(ctx context.Context, entry models.ActivityEntry) (bool, error) {
	s.entries = append(s.entries, entry)
	if s.insertFn == nil {
		return true, nil
	}
	return s.insertFn(ctx, entry)
}

func (s *stubActivityLog) Exists(ctx context.Context, entryID string) (bool, error) {
	if s.existsFn == nil {
		return false, nil
	}
	return s.existsFn(ctx, entryID)
}

// memInventoryStore is a map-backed inventory for lifecycle tests.
type memInventoryStore struct {
	mu        sync.Mutex
	items     map[string]models.InventoryItem
	insertErr error
}

func newMemInventoryStore() *memInventoryStore {
	return &memInventoryStore{items: make(map[string]models.InventoryItem)}
}

func (s *memInventoryStore) ListByUser(_ context.Context, userID string) ([]models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []models.InventoryItem
	for _, item := range s.items {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *memInventoryStore) GetByID(_ context.Context, userID, itemID string) (models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok || item.UserID != userID {
		return models.InventoryItem{}, errNoRows
	}
	return item, nil
}

func (s *memInventoryStore) Insert(_ context.Context, item models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.items[item.ID] = item
	return nil
}

func (s *memInventoryStore) UpdateState(_ context.Context, item models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	return nil
}

func (s *memInventoryStore) Delete(_ context.Context, userID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, itemID)
	return nil
}
