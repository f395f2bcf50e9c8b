package store

import (
	"context"
	"database/sql"
	"errors"

	"tokenmine/internal/models"
)

type BalanceStore struct {
	db DB
}

func NewBalanceStore(db DB) *BalanceStore {
	return &BalanceStore{db: db}
}

// Get returns the user's balances. A user without a row holds nothing yet.
func (s *BalanceStore) Get(ctx context.Context, userID string) (models.TokenBalance, error) {
	var row models.TokenBalance
	err := s.db.GetContext(ctx, &row, `
		SELECT red_tokens, gold_tokens, black_tokens
		FROM user_tokens
		WHERE user_id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TokenBalance{}, nil
	}
	if err != nil {
		return models.TokenBalance{}, err
	}
	return row, nil
}

func (s *BalanceStore) Upsert(ctx context.Context, userID string, balance models.TokenBalance) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_tokens (user_id, red_tokens, gold_tokens, black_tokens)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET red_tokens = EXCLUDED.red_tokens,
		    gold_tokens = EXCLUDED.gold_tokens,
		    black_tokens = EXCLUDED.black_tokens,
		    updated_at = NOW()
	`, userID, balance.Red, balance.Gold, balance.Black)
	return err
}

// ListRedHolders returns the users holding a positive red balance, i.e. the
// candidates for the next purification.
func (s *BalanceStore) ListRedHolders(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `
		SELECT user_id
		FROM user_tokens
		WHERE red_tokens > 0
		ORDER BY user_id
	`)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
