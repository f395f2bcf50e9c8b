package economy

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tokenmine/internal/models"
	"tokenmine/internal/token"
	"tokenmine/internal/websocket"
)

var ErrPurificationInFlight = errors.New("purification already in flight")

// A nextEventAt jump beyond this between polls means the clock was moved
// externally (debug time-travel), which also triggers.
const jumpTolerance = time.Second

type engineState int

const (
	stateIdle engineState = iota
	stateTriggering
	stateSettling
)

// Transmuter is the ledger operation the engine performs on trigger.
type Transmuter interface {
	TransmuteAll(ctx context.Context, userID string, from, to token.Currency) (decimal.Decimal, models.TokenBalance, error)
}

// HolderLister yields the users eligible for purification.
type HolderLister interface {
	ListRedHolders(ctx context.Context) ([]string, error)
}

type LogAppender interface {
	Insert(ctx context.Context, entry models.ActivityEntry) (bool, error)
}

type PortfolioNotifier interface {
	BroadcastPortfolio(userID string, update websocket.PortfolioUpdate)
}

// Engine polls the purification clock and, when a cycle boundary is reached
// (or the clock jumps), transmutes each holder's entire red balance into
// gold. Per-user mutual exclusion is enforced by the state map: a user not in
// the idle state cannot be triggered again, so a slow settle can never
// double-spend the same red balance.
type Engine struct {
	clock       *OffsetClock
	ledger      Transmuter
	holders     HolderLister
	logs        LogAppender
	notifier    PortfolioNotifier
	poll        time.Duration
	settleDelay time.Duration

	mu       sync.Mutex
	states   map[string]engineState
	lastNext time.Time
}

func NewEngine(clock *OffsetClock, ledger Transmuter, holders HolderLister, logs LogAppender, notifier PortfolioNotifier, poll, settleDelay time.Duration) *Engine {
	if poll <= 0 {
		poll = 50 * time.Millisecond
	}
	return &Engine{
		clock:       clock,
		ledger:      ledger,
		holders:     holders,
		logs:        logs,
		notifier:    notifier,
		poll:        poll,
		settleDelay: settleDelay,
		states:      make(map[string]engineState),
	}
}

// Progress reports the current cycle through the engine's (possibly offset)
// clock.
func (e *Engine) Progress() Progress {
	return ProgressAt(e.clock.Now())
}

// Run polls until the context is cancelled. Correctness does not depend on
// the poll cadence, only on noticing a boundary eventually; the sub-second
// default exists for smooth progress reporting.
func (e *Engine) Run(ctx context.Context) {
	e.mu.Lock()
	e.lastNext = NextEventAt(e.clock.Now())
	e.mu.Unlock()

	ticker := time.NewTicker(e.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.check(ctx)
		}
	}
}

func (e *Engine) check(ctx context.Context) {
	progress := ProgressAt(e.clock.Now())

	e.mu.Lock()
	// A scheduled boundary is almost always detected as a jump: once the
	// instant passes, nextEventAt advances a whole cycle, far past the
	// tolerance. reached only fires on the rare poll that lands exactly on
	// the instant, where nextEventAt has not advanced yet.
	jumped := !e.lastNext.IsZero() && progress.NextEventAt.After(e.lastNext.Add(jumpTolerance))
	reached := progress.Remaining <= 0
	e.lastNext = progress.NextEventAt
	e.mu.Unlock()

	if !jumped && !reached {
		return
	}
	holders, err := e.holders.ListRedHolders(ctx)
	if err != nil {
		log.Printf("purification: listing red holders failed: %v", err)
		return
	}
	for _, userID := range holders {
		userID := userID
		go func() {
			if err := e.trigger(ctx, userID); err != nil && !errors.Is(err, ErrPurificationInFlight) {
				log.Printf("purification failed for %s: %v", userID, err)
			}
		}()
	}
}

// TriggerNow forces a purification for one user, bypassing the clock check.
// The in-flight guard still applies.
func (e *Engine) TriggerNow(ctx context.Context, userID string) error {
	return e.trigger(ctx, userID)
}

func (e *Engine) trigger(ctx context.Context, userID string) error {
	if !e.begin(userID) {
		return ErrPurificationInFlight
	}
	defer e.reset(userID)

	// Presentation window before the balances actually move. Cancellation
	// here aborts cleanly with nothing applied.
	if e.settleDelay > 0 {
		timer := time.NewTimer(e.settleDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	e.setState(userID, stateSettling)

	moved, balance, err := e.ledger.TransmuteAll(ctx, userID, token.Red, token.Gold)
	if err != nil {
		return err
	}
	if moved.IsZero() {
		return nil
	}
	entry := models.ActivityEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      models.LogKindPurification,
		Message:   fmt.Sprintf("Purification: %s red tokens transmuted into gold", moved),
		Status:    "success",
		CreatedAt: time.Now(),
	}
	if _, err := e.logs.Insert(ctx, entry); err != nil {
		log.Printf("purification log append failed for %s: %v", userID, err)
	}
	if e.notifier != nil {
		e.notifier.BroadcastPortfolio(userID, websocket.PortfolioUpdate{
			Red:   balance.Red.String(),
			Gold:  balance.Gold.String(),
			Black: balance.Black,
		})
	}
	return nil
}

func (e *Engine) begin(userID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.states[userID] != stateIdle {
		return false
	}
	e.states[userID] = stateTriggering
	return true
}

func (e *Engine) setState(userID string, state engineState) {
	e.mu.Lock()
	e.states[userID] = state
	e.mu.Unlock()
}

func (e *Engine) reset(userID string) {
	e.mu.Lock()
	delete(e.states, userID)
	e.mu.Unlock()
}
