package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tokenmine/internal/auth"
	"tokenmine/internal/config"
	"tokenmine/internal/db"
	"tokenmine/internal/economy"
	"tokenmine/internal/middleware"
	"tokenmine/internal/models"
	"tokenmine/internal/services"
	"tokenmine/internal/store"
	"tokenmine/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn     func(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	getByEmailFn func(ctx context.Context, email string) (models.User, error)
	getByIDFn    func(ctx context.Context, userID string) (models.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, passwordHash)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{}, nil
	}
	return s.getByIDFn(ctx, userID)
}

type stubHabitStore struct {
	listActiveFn func(ctx context.Context) ([]models.Habit, error)
}

func (s stubHabitStore) ListActive(ctx context.Context) ([]models.Habit, error) {
	if s.listActiveFn == nil {
		return nil, nil
	}
	return s.listActiveFn(ctx)
}

type stubCatalogStore struct {
	listActiveFn func(ctx context.Context) ([]models.CatalogItem, error)
}

func (s stubCatalogStore) ListActive(ctx context.Context) ([]models.CatalogItem, error) {
	if s.listActiveFn == nil {
		return nil, nil
	}
	return s.listActiveFn(ctx)
}

type stubActivityStore struct {
	listByKindFn func(ctx context.Context, userID, kind string, limit int) ([]models.ActivityEntry, error)
}

func (s stubActivityStore) ListByKind(ctx context.Context, userID, kind string, limit int) ([]models.ActivityEntry, error) {
	if s.listByKindFn == nil {
		return nil, nil
	}
	return s.listByKindFn(ctx, userID, kind, limit)
}

type stubMineLogStore struct {
	listByUserFn func(ctx context.Context, userID string, limit int) ([]models.MineEvent, error)
}

func (s stubMineLogStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.MineEvent, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit)
}

type stubStatsStore struct {
	getDayFn       func(ctx context.Context, userID string, date time.Time) (models.DailyStat, error)
	rangeFn        func(ctx context.Context, userID string, from, to time.Time) ([]models.DailyStat, error)
	getUserStatsFn func(ctx context.Context, userID string) (models.UserStats, error)
}

func (s stubStatsStore) GetDay(ctx context.Context, userID string, date time.Time) (models.DailyStat, error) {
	if s.getDayFn == nil {
		return models.DailyStat{}, nil
	}
	return s.getDayFn(ctx, userID, date)
}

func (s stubStatsStore) Range(ctx context.Context, userID string, from, to time.Time) ([]models.DailyStat, error) {
	if s.rangeFn == nil {
		return nil, nil
	}
	return s.rangeFn(ctx, userID, from, to)
}

func (s stubStatsStore) GetUserStats(ctx context.Context, userID string) (models.UserStats, error) {
	if s.getUserStatsFn == nil {
		return models.UserStats{}, nil
	}
	return s.getUserStatsFn(ctx, userID)
}

type stubTokenLedger struct {
	getFn func(ctx context.Context, userID string) (models.TokenBalance, error)
}

func (s stubTokenLedger) Get(ctx context.Context, userID string) (models.TokenBalance, error) {
	if s.getFn == nil {
		return models.TokenBalance{}, nil
	}
	return s.getFn(ctx, userID)
}

type stubMiningService struct {
	mineFn func(ctx context.Context, req services.MineRequest) (models.MineEvent, error)
}

func (s stubMiningService) Mine(ctx context.Context, req services.MineRequest) (models.MineEvent, error) {
	if s.mineFn == nil {
		return models.MineEvent{}, nil
	}
	return s.mineFn(ctx, req)
}

type stubMarketService struct {
	purchaseFn func(ctx context.Context, req services.PurchaseRequest) (services.PurchaseResult, error)
}

func (s stubMarketService) Purchase(ctx context.Context, req services.PurchaseRequest) (services.PurchaseResult, error) {
	if s.purchaseFn == nil {
		return services.PurchaseResult{}, nil
	}
	return s.purchaseFn(ctx, req)
}

type stubInventoryService struct {
	listFn      func(ctx context.Context, userID string) ([]models.InventoryItem, error)
	activateFn  func(ctx context.Context, userID, itemID string) (models.InventoryItem, error)
	pauseFn     func(ctx context.Context, userID, itemID string) (models.InventoryItem, error)
	resumeFn    func(ctx context.Context, userID, itemID string) (models.InventoryItem, error)
	stopEarlyFn func(ctx context.Context, userID, itemID string) error
	consumeFn   func(ctx context.Context, userID, itemID string) error
}

func (s stubInventoryService) List(ctx context.Context, userID string) ([]models.InventoryItem, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID)
}

func (s stubInventoryService) Activate(ctx context.Context, userID, itemID string) (models.InventoryItem, error) {
	if s.activateFn == nil {
		return models.InventoryItem{}, nil
	}
	return s.activateFn(ctx, userID, itemID)
}

func (s stubInventoryService) Pause(ctx context.Context, userID, itemID string) (models.InventoryItem, error) {
	if s.pauseFn == nil {
		return models.InventoryItem{}, nil
	}
	return s.pauseFn(ctx, userID, itemID)
}

func (s stubInventoryService) Resume(ctx context.Context, userID, itemID string) (models.InventoryItem, error) {
	if s.resumeFn == nil {
		return models.InventoryItem{}, nil
	}
	return s.resumeFn(ctx, userID, itemID)
}

func (s stubInventoryService) StopEarly(ctx context.Context, userID, itemID string) error {
	if s.stopEarlyFn == nil {
		return nil
	}
	return s.stopEarlyFn(ctx, userID, itemID)
}

func (s stubInventoryService) Consume(ctx context.Context, userID, itemID string) error {
	if s.consumeFn == nil {
		return nil
	}
	return s.consumeFn(ctx, userID, itemID)
}

type testHandlerOptions struct {
	txRunner  db.TxRunner
	users     UserStore
	habits    HabitStore
	catalog   CatalogStore
	activity  ActivityStore
	mineLogs  MineLogStore
	stats     StatsStore
	ledger    TokenLedger
	mining    MiningService
	market    MarketService
	inventory InventoryService
}

func newTestHandler(opts testHandlerOptions) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	if opts.txRunner == nil {
		opts.txRunner = fakeTxRunner{}
	}
	if opts.users == nil {
		opts.users = stubUserStore{}
	}
	if opts.habits == nil {
		opts.habits = stubHabitStore{}
	}
	if opts.catalog == nil {
		opts.catalog = stubCatalogStore{}
	}
	if opts.activity == nil {
		opts.activity = stubActivityStore{}
	}
	if opts.mineLogs == nil {
		opts.mineLogs = stubMineLogStore{}
	}
	if opts.stats == nil {
		opts.stats = stubStatsStore{}
	}
	if opts.ledger == nil {
		opts.ledger = stubTokenLedger{}
	}
	if opts.mining == nil {
		opts.mining = stubMiningService{}
	}
	if opts.market == nil {
		opts.market = stubMarketService{}
	}
	if opts.inventory == nil {
		opts.inventory = stubInventoryService{}
	}
	clock := &economy.OffsetClock{}
	engine := economy.NewEngine(clock, nil, nil, nil, nil, time.Second, 0)
	return New(opts.txRunner, cfg, opts.users, opts.habits, opts.catalog, opts.activity, opts.mineLogs, opts.stats, opts.ledger, opts.mining, opts.market, opts.inventory, engine, clock, websocket.NewHub())
}

func serveWithAuth(t *testing.T, handler http.HandlerFunc, userID string, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken("secret", userID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	rr := httptest.NewRecorder()
	req.Header.Set("Authorization", "Bearer "+token)
	middleware.Auth("secret")(handler).ServeHTTP(rr, req)
	return rr
}
