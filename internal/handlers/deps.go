package handlers

import (
	"context"
	"time"

	"tokenmine/internal/models"
	"tokenmine/internal/services"
	"tokenmine/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type HabitStore interface {
	ListActive(ctx context.Context) ([]models.Habit, error)
}

type CatalogStore interface {
	ListActive(ctx context.Context) ([]models.CatalogItem, error)
}

type ActivityStore interface {
	ListByKind(ctx context.Context, userID, kind string, limit int) ([]models.ActivityEntry, error)
}

type MineLogStore interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.MineEvent, error)
}

type StatsStore interface {
	GetDay(ctx context.Context, userID string, date time.Time) (models.DailyStat, error)
	Range(ctx context.Context, userID string, from, to time.Time) ([]models.DailyStat, error)
	GetUserStats(ctx context.Context, userID string) (models.UserStats, error)
}

type TokenLedger interface {
	Get(ctx context.Context, userID string) (models.TokenBalance, error)
}

type MiningService interface {
	Mine(ctx context.Context, req services.MineRequest) (models.MineEvent, error)
}

type MarketService interface {
	Purchase(ctx context.Context, req services.PurchaseRequest) (services.PurchaseResult, error)
}

type InventoryService interface {
	List(ctx context.Context, userID string) ([]models.InventoryItem, error)
	Activate(ctx context.Context, userID, itemID string) (models.InventoryItem, error)
	Pause(ctx context.Context, userID, itemID string) (models.InventoryItem, error)
	Resume(ctx context.Context, userID, itemID string) (models.InventoryItem, error)
	StopEarly(ctx context.Context, userID, itemID string) error
	Consume(ctx context.Context, userID, itemID string) error
}
