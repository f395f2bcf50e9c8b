package models

import (
	"time"

	"github.com/shopspring/decimal"

	"tokenmine/internal/token"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// TokenBalance is a user's holdings across the three currencies. Red and gold
// are fractional; black is only ever awarded in whole units.
type TokenBalance struct {
	Red   decimal.Decimal `db:"red_tokens" json:"red"`
	Gold  decimal.Decimal `db:"gold_tokens" json:"gold"`
	Black int64           `db:"black_tokens" json:"black"`
}

func (b TokenBalance) Of(currency token.Currency) decimal.Decimal {
	switch currency {
	case token.Red:
		return b.Red
	case token.Gold:
		return b.Gold
	case token.Black:
		return decimal.NewFromInt(b.Black)
	}
	return decimal.Zero
}

// Habit is a configured activity with distinct conversion rates per currency.
type Habit struct {
	ID        string    `db:"id" json:"id"`
	Category  string    `db:"category" json:"category"`
	Label     string    `db:"label" json:"label"`
	Emoji     string    `db:"emoji" json:"emoji"`
	Unit      string    `db:"unit" json:"unit"`
	SortOrder int       `db:"sort_order" json:"sort_order"`
	RedRate   HabitRate `json:"red_rate"`
	GoldRate  HabitRate `json:"gold_rate"`
	IsActive  bool      `db:"is_active" json:"is_active"`
}

// HabitRate is the conversion rule for one (habit, currency) pair.
type HabitRate struct {
	RepsPerToken decimal.Decimal `json:"reps_per_token"`
	MinGain      decimal.Decimal `json:"min_gain"`
}

// MineEvent records one mining action. Persisted append-only; the ID is
// client-generated so retried submissions dedupe instead of double-crediting.
type MineEvent struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"user_id"`
	HabitID   string          `db:"habit_id" json:"habit_id"`
	Reps      int64           `db:"reps" json:"reps"`
	Currency  token.Currency  `db:"currency" json:"currency"`
	Amount    decimal.Decimal `db:"token_amount" json:"token_amount"`
	Status    string          `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

const (
	MineStatusSuccess = "success"
	MineStatusWarning = "warning"
)

// CatalogItem is a marketplace listing. EffectKind declares what a purchase
// grants instead of special-casing item identities.
type CatalogItem struct {
	ID              string           `db:"id" json:"id"`
	Name            string           `db:"name" json:"name"`
	Description     string           `db:"description" json:"description"`
	Emoji           string           `db:"emoji" json:"emoji"`
	Cost            decimal.Decimal  `db:"cost" json:"cost"`
	Currency        token.Currency   `db:"currency" json:"currency"`
	Stock           *int64           `db:"stock" json:"stock,omitempty"`
	DurationMinutes *int64           `db:"duration_minutes" json:"duration_minutes,omitempty"`
	EffectKind      string           `db:"effect_kind" json:"effect_kind"`
	RewardCurrency  *token.Currency  `db:"reward_currency" json:"reward_currency,omitempty"`
	RewardAmount    *decimal.Decimal `db:"reward_amount" json:"reward_amount,omitempty"`
	SortOrder       int              `db:"sort_order" json:"sort_order"`
	IsActive        bool             `db:"is_active" json:"is_active"`
}

const (
	EffectGrantsInventoryItem   = "grants_inventory_item"
	EffectGrantsInstantCurrency = "grants_instant_currency"
)

type InventoryStatus string

const (
	InventoryInactive InventoryStatus = "Inactive"
	InventoryActive   InventoryStatus = "Active"
	InventoryPaused   InventoryStatus = "Paused"
)

// InventoryItem is a purchased, possibly time-limited effect. When Active,
// ExpiresAt is set and PausedRemainingMs is nil; when Paused the remaining
// duration is frozen in PausedRemainingMs instead. Removed items are deleted,
// not kept in a terminal state.
type InventoryItem struct {
	ID                string          `db:"id" json:"id"`
	UserID            string          `db:"user_id" json:"user_id"`
	CatalogItemID     string          `db:"catalog_item_id" json:"catalog_item_id"`
	Name              string          `db:"name" json:"name"`
	Emoji             string          `db:"emoji" json:"emoji"`
	Currency          token.Currency  `db:"currency" json:"currency"`
	DurationMinutes   *int64          `db:"duration_minutes" json:"duration_minutes,omitempty"`
	Status            InventoryStatus `db:"status" json:"status"`
	PurchasedAt       time.Time       `db:"purchased_at" json:"purchased_at"`
	ActivatedAt       *time.Time      `db:"activated_at" json:"activated_at,omitempty"`
	ExpiresAt         *time.Time      `db:"expires_at" json:"expires_at,omitempty"`
	PausedRemainingMs *int64          `db:"paused_remaining_ms" json:"paused_remaining_ms,omitempty"`
}

// ActivityEntry is one line in the mining, spending or purification logs.
type ActivityEntry struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Kind      string    `db:"kind" json:"kind"`
	Message   string    `db:"message" json:"message"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	LogKindMining       = "mining"
	LogKindSpending     = "spending"
	LogKindPurification = "purification"
)

// DailyStat accumulates per-day mined and burned totals plus a mine counter.
type DailyStat struct {
	UserID     string          `db:"user_id" json:"user_id"`
	Date       time.Time       `db:"date" json:"date"`
	RedMined   decimal.Decimal `db:"red_mined" json:"red_mined"`
	GoldMined  decimal.Decimal `db:"gold_mined" json:"gold_mined"`
	RedBurned  decimal.Decimal `db:"red_burned" json:"red_burned"`
	GoldBurned decimal.Decimal `db:"gold_burned" json:"gold_burned"`
	MineCount  int64           `db:"mine_count" json:"mine_count"`
}

// UserStats carries all-time counters that are independent of token output,
// such as total devotional reps.
type UserStats struct {
	UserID          string `db:"user_id" json:"user_id"`
	TotalDevotional int64  `db:"total_devotional" json:"total_devotional"`
}
