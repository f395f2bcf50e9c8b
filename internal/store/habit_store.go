package store

import (
	"context"

	"github.com/shopspring/decimal"

	"tokenmine/internal/models"
)

type HabitStore struct {
	db DB
}

type habitRow struct {
	ID               string          `db:"id"`
	Category         string          `db:"category"`
	Label            string          `db:"label"`
	Emoji            string          `db:"emoji"`
	Unit             string          `db:"unit"`
	SortOrder        int             `db:"sort_order"`
	RedRepsPerToken  decimal.Decimal `db:"red_reps_per_token"`
	RedMinGain       decimal.Decimal `db:"red_min_gain"`
	GoldRepsPerToken decimal.Decimal `db:"gold_reps_per_token"`
	GoldMinGain      decimal.Decimal `db:"gold_min_gain"`
	IsActive         bool            `db:"is_active"`
}

func NewHabitStore(db DB) *HabitStore {
	return &HabitStore{db: db}
}

func (s *HabitStore) ListActive(ctx context.Context) ([]models.Habit, error) {
	var rows []habitRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, category, label, emoji, unit, sort_order,
		       red_reps_per_token, red_min_gain,
		       gold_reps_per_token, gold_min_gain,
		       is_active
		FROM habits
		WHERE is_active = TRUE
		ORDER BY sort_order
	`)
	if err != nil {
		return nil, err
	}
	habits := make([]models.Habit, 0, len(rows))
	for _, row := range rows {
		habits = append(habits, row.toHabit())
	}
	return habits, nil
}

func (s *HabitStore) GetByID(ctx context.Context, habitID string) (models.Habit, error) {
	var row habitRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, category, label, emoji, unit, sort_order,
		       red_reps_per_token, red_min_gain,
		       gold_reps_per_token, gold_min_gain,
		       is_active
		FROM habits
		WHERE id = $1 AND is_active = TRUE
	`, habitID)
	if err != nil {
		return models.Habit{}, err
	}
	return row.toHabit(), nil
}

func (r habitRow) toHabit() models.Habit {
	return models.Habit{
		ID:        r.ID,
		Category:  r.Category,
		Label:     r.Label,
		Emoji:     r.Emoji,
		Unit:      r.Unit,
		SortOrder: r.SortOrder,
		RedRate:   models.HabitRate{RepsPerToken: r.RedRepsPerToken, MinGain: r.RedMinGain},
		GoldRate:  models.HabitRate{RepsPerToken: r.GoldRepsPerToken, MinGain: r.GoldMinGain},
		IsActive:  r.IsActive,
	}
}
