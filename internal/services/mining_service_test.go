package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tokenmine/internal/models"
	"tokenmine/internal/token"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func pushupsHabit() models.Habit {
	return models.Habit{
		ID:       "pushups",
		Category: "Strength",
		Label:    "Push-ups",
		RedRate:  models.HabitRate{RepsPerToken: dec("10"), MinGain: dec("0.5")},
		GoldRate: models.HabitRate{RepsPerToken: dec("20"), MinGain: dec("0.5")},
		IsActive: true,
	}
}

func devotionalHabit() models.Habit {
	return models.Habit{
		ID:       "scripture",
		Category: DevotionalCategory,
		Label:    "Scripture reading",
		RedRate:  models.HabitRate{RepsPerToken: dec("5"), MinGain: dec("0.5")},
		GoldRate: models.HabitRate{RepsPerToken: dec("5"), MinGain: dec("0.5")},
		IsActive: true,
	}
}

func newMiningService(habit models.Habit, mineLogs *stubMineLogStore, ledger *stubLedger, stats *stubStatsStore, hub *stubHub) *MiningService {
	habits := stubHabitStore{
		getByIDFn: func(_ context.Context, habitID string) (models.Habit, error) {
			if habitID != habit.ID {
				return models.Habit{}, sql.ErrNoRows
			}
			return habit, nil
		},
	}
	return NewMiningService(habits, mineLogs, ledger, stats, &stubActivityLog{}, hub, 0)
}

func TestMineCreditsAndLogsSuccess(t *testing.T) {
	mineLogs := &stubMineLogStore{}
	ledger := &stubLedger{
		creditFn: func(_ context.Context, _ string, currency token.Currency, amount decimal.Decimal) (models.TokenBalance, error) {
			if currency != token.Red {
				t.Fatalf("unexpected currency %s", currency)
			}
			return models.TokenBalance{Red: amount}, nil
		},
	}
	stats := &stubStatsStore{}
	hub := &stubHub{}
	service := newMiningService(pushupsHabit(), mineLogs, ledger, stats, hub)

	event, err := service.Mine(context.Background(), MineRequest{
		UserID: "user-1", HabitID: "pushups", Reps: 25, Currency: token.Red, EventID: "evt-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !event.Amount.Equal(dec("2.5")) {
		t.Fatalf("amount = %s, want 2.5", event.Amount)
	}
	if event.Status != models.MineStatusSuccess {
		t.Fatalf("status = %s, want success", event.Status)
	}
	if len(ledger.credits) != 1 || !ledger.credits[0].Equal(dec("2.5")) {
		t.Fatalf("unexpected credits: %v", ledger.credits)
	}
	if len(stats.mined) != 1 || !stats.mined[0].Equal(dec("2.5")) {
		t.Fatalf("unexpected mined stats: %v", stats.mined)
	}
	if len(hub.updates) != 1 {
		t.Fatalf("expected 1 portfolio update, got %d", len(hub.updates))
	}
	if len(stats.devotional) != 0 {
		t.Fatal("non-devotional habit must not touch the devotional counter")
	}
}

func TestMineBelowMinimumLogsWarningWithoutCredit(t *testing.T) {
	mineLogs := &stubMineLogStore{}
	ledger := &stubLedger{}
	stats := &stubStatsStore{}
	service := newMiningService(pushupsHabit(), mineLogs, ledger, stats, &stubHub{})

	event, err := service.Mine(context.Background(), MineRequest{
		UserID: "user-1", HabitID: "pushups", Reps: 3, Currency: token.Red, EventID: "evt-2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Status != models.MineStatusWarning {
		t.Fatalf("status = %s, want warning", event.Status)
	}
	if !event.Amount.IsZero() {
		t.Fatalf("amount = %s, want 0", event.Amount)
	}
	if len(mineLogs.events) != 1 {
		t.Fatal("a zero-yield mine must still be logged")
	}
	if len(ledger.credits) != 0 || len(stats.mined) != 0 {
		t.Fatal("zero yield must not credit or touch stats")
	}
}

func TestMineUnknownHabitAbortsBeforeAnyWrite(t *testing.T) {
	mineLogs := &stubMineLogStore{}
	ledger := &stubLedger{}
	service := newMiningService(pushupsHabit(), mineLogs, ledger, &stubStatsStore{}, &stubHub{})

	_, err := service.Mine(context.Background(), MineRequest{
		UserID: "user-1", HabitID: "situps", Reps: 10, Currency: token.Red,
	})
	if !errors.Is(err, ErrUnknownHabit) {
		t.Fatalf("expected ErrUnknownHabit, got %v", err)
	}
	if len(mineLogs.events) != 0 || len(ledger.credits) != 0 {
		t.Fatal("unknown habit must abort before any mutation")
	}
}

func TestMineRejectsBlackAndNegativeReps(t *testing.T) {
	service := newMiningService(pushupsHabit(), &stubMineLogStore{}, &stubLedger{}, &stubStatsStore{}, &stubHub{})

	if _, err := service.Mine(context.Background(), MineRequest{
		UserID: "user-1", HabitID: "pushups", Reps: 10, Currency: token.Black,
	}); !errors.Is(err, ErrNotMineable) {
		t.Fatalf("expected ErrNotMineable, got %v", err)
	}
	if _, err := service.Mine(context.Background(), MineRequest{
		UserID: "user-1", HabitID: "pushups", Reps: -1, Currency: token.Red,
	}); !errors.Is(err, ErrInvalidReps) {
		t.Fatalf("expected ErrInvalidReps, got %v", err)
	}
}

func TestMineReplayDoesNotDoubleCredit(t *testing.T) {
	stored := models.MineEvent{ID: "evt-1", UserID: "user-1", Amount: dec("2.5"), Status: models.MineStatusSuccess}
	mineLogs := &stubMineLogStore{
		insertFn: func(context.Context, models.MineEvent) (bool, error) {
			return false, nil
		},
		getByIDFn: func(context.Context, string, string) (models.MineEvent, error) {
			return stored, nil
		},
	}
	ledger := &stubLedger{}
	service := newMiningService(pushupsHabit(), mineLogs, ledger, &stubStatsStore{}, &stubHub{})

	event, err := service.Mine(context.Background(), MineRequest{
		UserID: "user-1", HabitID: "pushups", Reps: 25, Currency: token.Red, EventID: "evt-1",
	})
	if !errors.Is(err, ErrDuplicateEvent) {
		t.Fatalf("expected ErrDuplicateEvent, got %v", err)
	}
	if event.ID != "evt-1" {
		t.Fatalf("replay should return the stored event, got %+v", event)
	}
	if len(ledger.credits) != 0 {
		t.Fatal("replayed event must not credit again")
	}
}

func TestMineDevotionalHabit(t *testing.T) {
	stats := &stubStatsStore{}
	service := newMiningService(devotionalHabit(), &stubMineLogStore{}, &stubLedger{}, stats, &stubHub{})

	// Red mode is refused for devotional habits.
	if _, err := service.Mine(context.Background(), MineRequest{
		UserID: "user-1", HabitID: "scripture", Reps: 10, Currency: token.Red,
	}); !errors.Is(err, ErrGoldOnlyHabit) {
		t.Fatalf("expected ErrGoldOnlyHabit, got %v", err)
	}

	// Gold mode mines and bumps the all-time counter.
	if _, err := service.Mine(context.Background(), MineRequest{
		UserID: "user-1", HabitID: "scripture", Reps: 10, Currency: token.Gold, EventID: "evt-3",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats.devotional) != 1 || stats.devotional[0] != 10 {
		t.Fatalf("unexpected devotional increments: %v", stats.devotional)
	}

	// The counter moves even when the yield is zero.
	if _, err := service.Mine(context.Background(), MineRequest{
		UserID: "user-1", HabitID: "scripture", Reps: 1, Currency: token.Gold, EventID: "evt-4",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats.devotional) != 2 {
		t.Fatal("devotional counter must move independently of token output")
	}
}

func TestMineCancelledDuringCommitDelay(t *testing.T) {
	mineLogs := &stubMineLogStore{}
	ledger := &stubLedger{}
	habits := stubHabitStore{
		getByIDFn: func(context.Context, string) (models.Habit, error) {
			return pushupsHabit(), nil
		},
	}
	service := NewMiningService(habits, mineLogs, ledger, &stubStatsStore{}, &stubActivityLog{}, &stubHub{}, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := service.Mine(ctx, MineRequest{
		UserID: "user-1", HabitID: "pushups", Reps: 25, Currency: token.Red, EventID: "evt-5",
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(ledger.credits) != 0 {
		t.Fatal("cancelled commit must not credit")
	}
}
