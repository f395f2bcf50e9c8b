package store

import (
	"context"

	"tokenmine/internal/models"
)

type InventoryStore struct {
	db DB
}

func NewInventoryStore(db DB) *InventoryStore {
	return &InventoryStore{db: db}
}

func (s *InventoryStore) ListByUser(ctx context.Context, userID string) ([]models.InventoryItem, error) {
	var rows []models.InventoryItem
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, catalog_item_id, name, emoji, currency,
		       duration_minutes, status, purchased_at, activated_at,
		       expires_at, paused_remaining_ms
		FROM inventory_items
		WHERE user_id = $1
		ORDER BY purchased_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *InventoryStore) GetByID(ctx context.Context, userID, itemID string) (models.InventoryItem, error) {
	var row models.InventoryItem
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, catalog_item_id, name, emoji, currency,
		       duration_minutes, status, purchased_at, activated_at,
		       expires_at, paused_remaining_ms
		FROM inventory_items
		WHERE id = $1 AND user_id = $2
	`, itemID, userID)
	if err != nil {
		return models.InventoryItem{}, err
	}
	return row, nil
}

func (s *InventoryStore) Insert(ctx context.Context, item models.InventoryItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_items
			(id, user_id, catalog_item_id, name, emoji, currency,
			 duration_minutes, status, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, item.ID, item.UserID, item.CatalogItemID, item.Name, item.Emoji,
		item.Currency, item.DurationMinutes, item.Status, item.PurchasedAt)
	return err
}

// UpdateState persists a lifecycle transition: status plus the timer fields
// that changed with it.
func (s *InventoryStore) UpdateState(ctx context.Context, item models.InventoryItem) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET status = $1,
		    activated_at = $2,
		    expires_at = $3,
		    paused_remaining_ms = $4
		WHERE id = $5 AND user_id = $6
	`, item.Status, item.ActivatedAt, item.ExpiresAt, item.PausedRemainingMs,
		item.ID, item.UserID)
	return err
}

func (s *InventoryStore) Delete(ctx context.Context, userID, itemID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM inventory_items
		WHERE id = $1 AND user_id = $2
	`, itemID, userID)
	return err
}
