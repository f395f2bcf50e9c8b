package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tokenmine/internal/models"
)

type InventoryStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.InventoryItem, error)
	GetByID(ctx context.Context, userID, itemID string) (models.InventoryItem, error)
	Insert(ctx context.Context, item models.InventoryItem) error
	UpdateState(ctx context.Context, item models.InventoryItem) error
	Delete(ctx context.Context, userID, itemID string) error
}

// InventoryService drives the lifecycle of purchased items:
// Inactive -> Active -> (Paused <-> Active) -> removed. There is no refund on
// any exit path. Pausing freezes the remaining duration; resuming rebases the
// expiry on the current time, so immediate pause/resume round trips restore
// the original deadline.
type InventoryService struct {
	store InventoryStore
	now   func() time.Time
}

func NewInventoryService(store InventoryStore) *InventoryService {
	return &InventoryService{store: store, now: time.Now}
}

// List returns the user's items, expiring overdue ones on the way. Expiry is
// system-driven removal with no refund.
func (s *InventoryService) List(ctx context.Context, userID string) ([]models.InventoryItem, error) {
	items, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	alive := items[:0]
	for _, item := range items {
		if item.Status == models.InventoryActive && item.ExpiresAt != nil && !now.Before(*item.ExpiresAt) {
			if err := s.store.Delete(ctx, userID, item.ID); err != nil {
				return nil, err
			}
			continue
		}
		alive = append(alive, item)
	}
	return alive, nil
}

// Activate starts a timed item's countdown. Non-timed items cannot activate;
// they are consumed through Consume after the user confirms real-world use.
func (s *InventoryService) Activate(ctx context.Context, userID, itemID string) (models.InventoryItem, error) {
	item, err := s.get(ctx, userID, itemID)
	if err != nil {
		return models.InventoryItem{}, err
	}
	if item.Status != models.InventoryInactive {
		return models.InventoryItem{}, ErrInvalidState
	}
	if item.DurationMinutes == nil {
		return models.InventoryItem{}, ErrNotTimed
	}
	now := s.now()
	expires := now.Add(time.Duration(*item.DurationMinutes) * time.Minute)
	item.Status = models.InventoryActive
	item.ActivatedAt = &now
	item.ExpiresAt = &expires
	item.PausedRemainingMs = nil
	if err := s.store.UpdateState(ctx, item); err != nil {
		return models.InventoryItem{}, err
	}
	return item, nil
}

// Pause freezes an active countdown. An item whose deadline already passed
// cannot pause; it should have expired.
func (s *InventoryService) Pause(ctx context.Context, userID, itemID string) (models.InventoryItem, error) {
	item, err := s.get(ctx, userID, itemID)
	if err != nil {
		return models.InventoryItem{}, err
	}
	if item.Status != models.InventoryActive || item.ExpiresAt == nil {
		return models.InventoryItem{}, ErrInvalidState
	}
	remaining := item.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return models.InventoryItem{}, ErrInvalidState
	}
	remainingMs := remaining.Milliseconds()
	item.Status = models.InventoryPaused
	item.PausedRemainingMs = &remainingMs
	item.ExpiresAt = nil
	if err := s.store.UpdateState(ctx, item); err != nil {
		return models.InventoryItem{}, err
	}
	return item, nil
}

// Resume restarts a paused countdown from the frozen remainder.
func (s *InventoryService) Resume(ctx context.Context, userID, itemID string) (models.InventoryItem, error) {
	item, err := s.get(ctx, userID, itemID)
	if err != nil {
		return models.InventoryItem{}, err
	}
	if item.Status != models.InventoryPaused || item.PausedRemainingMs == nil {
		return models.InventoryItem{}, ErrInvalidState
	}
	expires := s.now().Add(time.Duration(*item.PausedRemainingMs) * time.Millisecond)
	item.Status = models.InventoryActive
	item.ExpiresAt = &expires
	item.PausedRemainingMs = nil
	if err := s.store.UpdateState(ctx, item); err != nil {
		return models.InventoryItem{}, err
	}
	return item, nil
}

// StopEarly removes a running or paused item before its time is up. The
// caller is expected to have confirmed the (irreversible) stop with the user.
func (s *InventoryService) StopEarly(ctx context.Context, userID, itemID string) error {
	item, err := s.get(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if item.Status != models.InventoryActive && item.Status != models.InventoryPaused {
		return ErrInvalidState
	}
	return s.store.Delete(ctx, userID, item.ID)
}

// Consume removes a non-timed item after the user confirms it was used.
func (s *InventoryService) Consume(ctx context.Context, userID, itemID string) error {
	item, err := s.get(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if item.Status != models.InventoryInactive || item.DurationMinutes != nil {
		return ErrInvalidState
	}
	return s.store.Delete(ctx, userID, item.ID)
}

func (s *InventoryService) get(ctx context.Context, userID, itemID string) (models.InventoryItem, error) {
	item, err := s.store.GetByID(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.InventoryItem{}, ErrUnknownItem
		}
		return models.InventoryItem{}, err
	}
	return item, nil
}

// ItemRemaining projects how much countdown is left at a given moment. Paused
// items report their frozen remainder.
func ItemRemaining(item models.InventoryItem, now time.Time) time.Duration {
	switch item.Status {
	case models.InventoryActive:
		if item.ExpiresAt == nil {
			return 0
		}
		remaining := item.ExpiresAt.Sub(now)
		if remaining < 0 {
			return 0
		}
		return remaining
	case models.InventoryPaused:
		if item.PausedRemainingMs == nil {
			return 0
		}
		return time.Duration(*item.PausedRemainingMs) * time.Millisecond
	}
	return 0
}

// ItemProgress is the remaining share of the item's full duration, 0..100.
func ItemProgress(item models.InventoryItem, now time.Time) float64 {
	if item.DurationMinutes == nil || *item.DurationMinutes <= 0 {
		return 0
	}
	total := time.Duration(*item.DurationMinutes) * time.Minute
	progress := float64(ItemRemaining(item, now)) / float64(total) * 100
	if progress > 100 {
		progress = 100
	}
	return progress
}
