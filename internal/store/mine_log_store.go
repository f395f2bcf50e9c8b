package store

import (
	"context"

	"tokenmine/internal/models"
)

type MineLogStore struct {
	db DB
}

func NewMineLogStore(db DB) *MineLogStore {
	return &MineLogStore{db: db}
}

// Insert appends a mine event. The event ID is the client-generated
// idempotency key; replaying an already-recorded event inserts nothing and
// returns false.
func (s *MineLogStore) Insert(ctx context.Context, event models.MineEvent) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO mining_logs
			(id, user_id, habit_id, reps, currency, token_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, event.ID, event.UserID, event.HabitID, event.Reps, event.Currency,
		event.Amount, event.Status, event.CreatedAt)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *MineLogStore) GetByID(ctx context.Context, userID, eventID string) (models.MineEvent, error) {
	var row models.MineEvent
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, habit_id, reps, currency, token_amount, status, created_at
		FROM mining_logs
		WHERE id = $1 AND user_id = $2
	`, eventID, userID)
	if err != nil {
		return models.MineEvent{}, err
	}
	return row, nil
}

func (s *MineLogStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.MineEvent, error) {
	var rows []models.MineEvent
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, habit_id, reps, currency, token_amount, status, created_at
		FROM mining_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
