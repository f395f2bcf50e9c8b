package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tokenmine/internal/models"
	"tokenmine/internal/token"
)

type StatsStore struct {
	db DB
}

func NewStatsStore(db DB) *StatsStore {
	return &StatsStore{db: db}
}

// MergeMined adds a mined amount to the day's total for one currency and
// bumps the mine counter.
func (s *StatsStore) MergeMined(ctx context.Context, userID string, date time.Time, currency token.Currency, amount decimal.Decimal) error {
	column, err := minedColumn(currency)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO daily_stats (user_id, date, %[1]s, mine_count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (user_id, date) DO UPDATE
		SET %[1]s = daily_stats.%[1]s + EXCLUDED.%[1]s,
		    mine_count = daily_stats.mine_count + 1
	`, column)
	_, err = s.db.ExecContext(ctx, query, userID, dateOnly(date), amount)
	return err
}

// MergeBurned adds a spent amount to the day's burn total for one currency.
func (s *StatsStore) MergeBurned(ctx context.Context, userID string, date time.Time, currency token.Currency, amount decimal.Decimal) error {
	column, err := burnedColumn(currency)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO daily_stats (user_id, date, %[1]s)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, date) DO UPDATE
		SET %[1]s = daily_stats.%[1]s + EXCLUDED.%[1]s
	`, column)
	_, err = s.db.ExecContext(ctx, query, userID, dateOnly(date), amount)
	return err
}

func (s *StatsStore) GetDay(ctx context.Context, userID string, date time.Time) (models.DailyStat, error) {
	var row models.DailyStat
	err := s.db.GetContext(ctx, &row, `
		SELECT user_id, date, red_mined, gold_mined, red_burned, gold_burned, mine_count
		FROM daily_stats
		WHERE user_id = $1 AND date = $2
	`, userID, dateOnly(date))
	if errors.Is(err, sql.ErrNoRows) {
		return models.DailyStat{UserID: userID, Date: dateOnly(date)}, nil
	}
	if err != nil {
		return models.DailyStat{}, err
	}
	return row, nil
}

func (s *StatsStore) Range(ctx context.Context, userID string, from, to time.Time) ([]models.DailyStat, error) {
	var rows []models.DailyStat
	err := s.db.SelectContext(ctx, &rows, `
		SELECT user_id, date, red_mined, gold_mined, red_burned, gold_burned, mine_count
		FROM daily_stats
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`, userID, dateOnly(from), dateOnly(to))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// IncrementDevotional bumps the all-time devotional rep counter.
func (s *StatsStore) IncrementDevotional(ctx context.Context, userID string, reps int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_stats (user_id, total_devotional)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET total_devotional = user_stats.total_devotional + EXCLUDED.total_devotional
	`, userID, reps)
	return err
}

func (s *StatsStore) GetUserStats(ctx context.Context, userID string) (models.UserStats, error) {
	var row models.UserStats
	err := s.db.GetContext(ctx, &row, `
		SELECT user_id, total_devotional
		FROM user_stats
		WHERE user_id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserStats{UserID: userID}, nil
	}
	if err != nil {
		return models.UserStats{}, err
	}
	return row, nil
}

func minedColumn(currency token.Currency) (string, error) {
	switch currency {
	case token.Red:
		return "red_mined", nil
	case token.Gold:
		return "gold_mined", nil
	}
	return "", token.ErrUnknownCurrency
}

func burnedColumn(currency token.Currency) (string, error) {
	switch currency {
	case token.Red:
		return "red_burned", nil
	case token.Gold:
		return "gold_burned", nil
	}
	return "", token.ErrUnknownCurrency
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
