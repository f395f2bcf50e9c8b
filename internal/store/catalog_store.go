package store

import (
	"context"

	"tokenmine/internal/models"
)

type CatalogStore struct {
	db DB
}

func NewCatalogStore(db DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) ListActive(ctx context.Context) ([]models.CatalogItem, error) {
	var rows []models.CatalogItem
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, description, emoji, cost, currency, stock,
		       duration_minutes, effect_kind, reward_currency, reward_amount,
		       sort_order, is_active
		FROM marketplace_items
		WHERE is_active = TRUE
		ORDER BY sort_order
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CatalogStore) GetByID(ctx context.Context, itemID string) (models.CatalogItem, error) {
	var row models.CatalogItem
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, description, emoji, cost, currency, stock,
		       duration_minutes, effect_kind, reward_currency, reward_amount,
		       sort_order, is_active
		FROM marketplace_items
		WHERE id = $1 AND is_active = TRUE
	`, itemID)
	if err != nil {
		return models.CatalogItem{}, err
	}
	return row, nil
}

// DecrementStock takes one unit of finite stock. Returns the number of rows
// touched; zero means the item sold out (or has unlimited stock, which callers
// must not decrement).
func (s *CatalogStore) DecrementStock(ctx context.Context, itemID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE marketplace_items
		SET stock = stock - 1
		WHERE id = $1 AND stock > 0
	`, itemID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RestoreStock puts a unit back after a purchase fails downstream of the
// decrement.
func (s *CatalogStore) RestoreStock(ctx context.Context, itemID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE marketplace_items
		SET stock = stock + 1
		WHERE id = $1 AND stock IS NOT NULL
	`, itemID)
	return err
}
