package store

import (
	"context"

	"tokenmine/internal/models"
)

type ActivityStore struct {
	db DB
}

func NewActivityStore(db DB) *ActivityStore {
	return &ActivityStore{db: db}
}

// Insert appends a spending or purification log entry. Entry IDs double as
// idempotency keys: replaying an ID inserts nothing and returns false.
func (s *ActivityStore) Insert(ctx context.Context, entry models.ActivityEntry) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_logs (id, user_id, kind, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, entry.ID, entry.UserID, entry.Kind, entry.Message, entry.Status, entry.CreatedAt)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *ActivityStore) Exists(ctx context.Context, entryID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM activity_logs WHERE id = $1)
	`, entryID)
	return exists, err
}

func (s *ActivityStore) ListByKind(ctx context.Context, userID, kind string, limit int) ([]models.ActivityEntry, error) {
	var rows []models.ActivityEntry
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, kind, message, status, created_at
		FROM activity_logs
		WHERE user_id = $1 AND kind = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, userID, kind, limit)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
