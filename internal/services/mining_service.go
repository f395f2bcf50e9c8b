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

var (
	ErrUnknownHabit   = errors.New("unknown habit")
	ErrInvalidReps    = errors.New("invalid reps")
	ErrNotMineable    = errors.New("currency cannot be mined")
	ErrGoldOnlyHabit  = errors.New("habit awards gold only")
	ErrUnknownItem    = errors.New("unknown catalog item")
	ErrOutOfStock     = errors.New("item out of stock")
	ErrDuplicateEvent = errors.New("event already processed")
	ErrInvalidState   = errors.New("invalid item state")
	ErrNotTimed       = errors.New("item has no duration")
)

// DevotionalCategory marks habits whose reps feed the all-time devotional
// counter and which may only be mined in gold mode.
const DevotionalCategory = "Faith"

type HabitStore interface {
	GetByID(ctx context.Context, habitID string) (models.Habit, error)
}

type MineLogStore interface {
	Insert(ctx context.Context, event models.MineEvent) (bool, error)
	GetByID(ctx context.Context, userID, eventID string) (models.MineEvent, error)
}

type MiningLedger interface {
	Credit(ctx context.Context, userID string, currency token.Currency, amount decimal.Decimal) (models.TokenBalance, error)
}

type StatsStore interface {
	MergeMined(ctx context.Context, userID string, date time.Time, currency token.Currency, amount decimal.Decimal) error
	IncrementDevotional(ctx context.Context, userID string, reps int64) error
}

type PortfolioHub interface {
	BroadcastPortfolio(userID string, update websocket.PortfolioUpdate)
}

// MiningService converts logged reps into tokens. A mine action always
// leaves a log entry; balance, stats and counters only move when the yield
// is positive. Log and stats writes after the credit are best effort: a
// failed side write is logged and does not undo the credit.
type MiningService struct {
	habits      HabitStore
	mineLogs    MineLogStore
	ledger      MiningLedger
	stats       StatsStore
	activity    ActivityLog
	hub         PortfolioHub
	commitDelay time.Duration
	now         func() time.Time
}

func NewMiningService(habits HabitStore, mineLogs MineLogStore, ledger MiningLedger, stats StatsStore, activity ActivityLog, hub PortfolioHub, commitDelay time.Duration) *MiningService {
	return &MiningService{
		habits:      habits,
		mineLogs:    mineLogs,
		ledger:      ledger,
		stats:       stats,
		activity:    activity,
		hub:         hub,
		commitDelay: commitDelay,
		now:         time.Now,
	}
}

type MineRequest struct {
	UserID   string
	HabitID  string
	Reps     int64
	Currency token.Currency
	// EventID is client-generated; replaying the same ID returns the stored
	// event without crediting again.
	EventID string
}

func (s *MiningService) Mine(ctx context.Context, req MineRequest) (models.MineEvent, error) {
	if req.Reps < 0 {
		return models.MineEvent{}, ErrInvalidReps
	}
	if !req.Currency.Mineable() {
		return models.MineEvent{}, ErrNotMineable
	}
	habit, err := s.habits.GetByID(ctx, req.HabitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MineEvent{}, ErrUnknownHabit
		}
		return models.MineEvent{}, err
	}
	if habit.Category == DevotionalCategory && req.Currency == token.Red {
		return models.MineEvent{}, ErrGoldOnlyHabit
	}

	rate := habit.RedRate
	if req.Currency == token.Gold {
		rate = habit.GoldRate
	}
	output := token.Calculate(req.Reps, rate.RepsPerToken, rate.MinGain)

	eventID := req.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	status := models.MineStatusSuccess
	if output.Sign() <= 0 {
		// Reps below the minimum gain are an expected outcome, not an error.
		status = models.MineStatusWarning
	}
	event := models.MineEvent{
		ID:        eventID,
		UserID:    req.UserID,
		HabitID:   habit.ID,
		Reps:      req.Reps,
		Currency:  req.Currency,
		Amount:    output,
		Status:    status,
		CreatedAt: s.now(),
	}

	inserted, err := s.mineLogs.Insert(ctx, event)
	if err != nil {
		return models.MineEvent{}, err
	}
	if !inserted {
		// Replay of an already-committed event.
		stored, err := s.mineLogs.GetByID(ctx, req.UserID, eventID)
		if err != nil {
			return models.MineEvent{}, err
		}
		return stored, ErrDuplicateEvent
	}

	message := fmt.Sprintf("Mined %s %s from %s %s", output, req.Currency, habit.Emoji, habit.Label)
	if status == models.MineStatusWarning {
		message = fmt.Sprintf("%d %s is below the minimum yield for %s %s", req.Reps, habit.Unit, habit.Emoji, habit.Label)
	}
	s.appendActivity(ctx, models.ActivityEntry{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Kind:      models.LogKindMining,
		Message:   message,
		Status:    status,
		CreatedAt: event.CreatedAt,
	})

	if output.Sign() > 0 {
		if err := s.waitCommit(ctx); err != nil {
			return models.MineEvent{}, err
		}
		balance, err := s.ledger.Credit(ctx, req.UserID, req.Currency, output)
		if err != nil {
			return models.MineEvent{}, err
		}
		if err := s.stats.MergeMined(ctx, req.UserID, event.CreatedAt, req.Currency, output); err != nil {
			log.Printf("mining: daily stat merge failed for %s: %v", req.UserID, err)
		}
		if s.hub != nil {
			s.hub.BroadcastPortfolio(req.UserID, websocket.PortfolioUpdate{
				Red:   balance.Red.String(),
				Gold:  balance.Gold.String(),
				Black: balance.Black,
			})
		}
	}

	// Devotional reps count toward the all-time total regardless of yield.
	if habit.Category == DevotionalCategory && req.Reps > 0 {
		if err := s.stats.IncrementDevotional(ctx, req.UserID, req.Reps); err != nil {
			log.Printf("mining: devotional counter update failed for %s: %v", req.UserID, err)
		}
	}
	return event, nil
}

func (s *MiningService) appendActivity(ctx context.Context, entry models.ActivityEntry) {
	if s.activity == nil {
		return
	}
	if _, err := s.activity.Insert(ctx, entry); err != nil {
		log.Printf("mining: activity log append failed for %s: %v", entry.UserID, err)
	}
}

// waitCommit is the presentation window between computing the yield and
// committing it. Cancellation during the wait aborts with the credit
// untouched; once the wait returns the commit runs to completion.
func (s *MiningService) waitCommit(ctx context.Context) error {
	if s.commitDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.commitDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
