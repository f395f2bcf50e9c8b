package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tokenmine/internal/models"
	"tokenmine/internal/token"
	"tokenmine/internal/websocket"
)

type CatalogStore interface {
	GetByID(ctx context.Context, itemID string) (models.CatalogItem, error)
	DecrementStock(ctx context.Context, itemID string) (int64, error)
	RestoreStock(ctx context.Context, itemID string) error
}

type MarketLedger interface {
	Credit(ctx context.Context, userID string, currency token.Currency, amount decimal.Decimal) (models.TokenBalance, error)
	Debit(ctx context.Context, userID string, currency token.Currency, amount decimal.Decimal) (models.TokenBalance, error)
}

type InventoryInserter interface {
	Insert(ctx context.Context, item models.InventoryItem) error
}

type ActivityLog interface {
	Insert(ctx context.Context, entry models.ActivityEntry) (bool, error)
	Exists(ctx context.Context, entryID string) (bool, error)
}

type BurnStats interface {
	MergeBurned(ctx context.Context, userID string, date time.Time, currency token.Currency, amount decimal.Decimal) error
}

// MarketService settles marketplace purchases: it debits the cost, takes a
// unit of finite stock, logs the spend and then grants what the catalog
// entry's effect kind declares, either an inactive inventory item or an
// instant currency reward.
type MarketService struct {
	catalog   CatalogStore
	ledger    MarketLedger
	inventory InventoryInserter
	logs      ActivityLog
	stats     BurnStats
	hub       PortfolioHub
	now       func() time.Time
}

func NewMarketService(catalog CatalogStore, ledger MarketLedger, inventory InventoryInserter, logs ActivityLog, stats BurnStats, hub PortfolioHub) *MarketService {
	return &MarketService{
		catalog:   catalog,
		ledger:    ledger,
		inventory: inventory,
		logs:      logs,
		stats:     stats,
		hub:       hub,
		now:       time.Now,
	}
}

type PurchaseRequest struct {
	UserID  string
	ItemID  string
	EventID string
}

type PurchaseResult struct {
	Item          models.CatalogItem    `json:"item"`
	Balance       models.TokenBalance   `json:"balance"`
	InventoryItem *models.InventoryItem `json:"inventory_item,omitempty"`
	RewardGranted bool                  `json:"reward_granted"`
}

func (s *MarketService) Purchase(ctx context.Context, req PurchaseRequest) (PurchaseResult, error) {
	eventID := req.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	if seen, err := s.logs.Exists(ctx, eventID); err != nil {
		return PurchaseResult{}, err
	} else if seen {
		return PurchaseResult{}, ErrDuplicateEvent
	}

	item, err := s.catalog.GetByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PurchaseResult{}, ErrUnknownItem
		}
		return PurchaseResult{}, err
	}
	if item.Stock != nil && *item.Stock <= 0 {
		return PurchaseResult{}, ErrOutOfStock
	}

	balance, err := s.ledger.Debit(ctx, req.UserID, item.Currency, item.Cost)
	if err != nil {
		return PurchaseResult{}, err
	}

	if item.Stock != nil {
		taken, err := s.catalog.DecrementStock(ctx, item.ID)
		if err == nil && taken == 0 {
			err = ErrOutOfStock
		}
		if err != nil {
			// Sold out (or store failure) after the debit: put the money back.
			if _, refundErr := s.ledger.Credit(ctx, req.UserID, item.Currency, item.Cost); refundErr != nil {
				log.Printf("market: refund after failed stock decrement failed for %s: %v", req.UserID, refundErr)
			}
			return PurchaseResult{}, err
		}
	}

	now := s.now()
	s.appendLog(ctx, models.ActivityEntry{
		ID:        eventID,
		UserID:    req.UserID,
		Kind:      models.LogKindSpending,
		Message:   fmt.Sprintf("Burned %s %s on %s %s", item.Cost, item.Currency, item.Emoji, item.Name),
		Status:    "purchase",
		CreatedAt: now,
	})

	result := PurchaseResult{Item: item, Balance: balance}
	switch item.EffectKind {
	case models.EffectGrantsInstantCurrency:
		reward := decimal.NewFromInt(1)
		currency := token.Black
		if item.RewardAmount != nil {
			reward = *item.RewardAmount
		}
		if item.RewardCurrency != nil {
			currency = *item.RewardCurrency
		}
		balance, err = s.ledger.Credit(ctx, req.UserID, currency, reward)
		if err != nil {
			s.compensate(ctx, req.UserID, item)
			return PurchaseResult{}, err
		}
		result.Balance = balance
		result.RewardGranted = true
		s.appendLog(ctx, models.ActivityEntry{
			ID:        uuid.NewString(),
			UserID:    req.UserID,
			Kind:      models.LogKindSpending,
			Message:   fmt.Sprintf("Received %s %s instantly", reward, currency),
			Status:    "info",
			CreatedAt: now,
		})
	default:
		inv := models.InventoryItem{
			ID:              uuid.NewString(),
			UserID:          req.UserID,
			CatalogItemID:   item.ID,
			Name:            item.Name,
			Emoji:           item.Emoji,
			Currency:        item.Currency,
			DurationMinutes: item.DurationMinutes,
			Status:          models.InventoryInactive,
			PurchasedAt:     now,
		}
		if err := s.inventory.Insert(ctx, inv); err != nil {
			s.compensate(ctx, req.UserID, item)
			return PurchaseResult{}, err
		}
		result.InventoryItem = &inv
	}

	if item.Currency.Mineable() {
		if err := s.stats.MergeBurned(ctx, req.UserID, now, item.Currency, item.Cost); err != nil {
			log.Printf("market: burn stat merge failed for %s: %v", req.UserID, err)
		}
	}
	if s.hub != nil {
		s.hub.BroadcastPortfolio(req.UserID, websocket.PortfolioUpdate{
			Red:   result.Balance.Red.String(),
			Gold:  result.Balance.Gold.String(),
			Black: result.Balance.Black,
		})
	}
	return result, nil
}

// compensate unwinds a purchase whose grant step failed after the money and
// stock already moved: the cost is credited back and any finite stock unit
// returned.
func (s *MarketService) compensate(ctx context.Context, userID string, item models.CatalogItem) {
	if _, err := s.ledger.Credit(ctx, userID, item.Currency, item.Cost); err != nil {
		log.Printf("market: refund after failed grant failed for %s: %v", userID, err)
	}
	if item.Stock != nil {
		if err := s.catalog.RestoreStock(ctx, item.ID); err != nil {
			log.Printf("market: stock restore after failed grant failed for %s: %v", item.ID, err)
		}
	}
}

func (s *MarketService) appendLog(ctx context.Context, entry models.ActivityEntry) {
	if _, err := s.logs.Insert(ctx, entry); err != nil {
		log.Printf("market: spend log append failed for %s: %v", entry.UserID, err)
	}
}
