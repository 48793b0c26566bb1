package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driven"
	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService reads the stored history without modifying it.
type HistoryService struct {
	store driven.DocumentStore
	key   string
	now   func() time.Time
}

// NewHistoryService creates a history service for the document under key.
func NewHistoryService(store driven.DocumentStore, key string) *HistoryService {
	return &HistoryService{
		store: store,
		key:   key,
		now:   time.Now,
	}
}

// History returns the stored document.
func (s *HistoryService) History(ctx context.Context) (*domain.History, error) {
	h, err := s.store.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}
	if h == nil {
		h = &domain.History{}
	}
	return h, nil
}

// Recents returns the stored recents list. Never nil.
func (s *HistoryService) Recents(ctx context.Context) ([]domain.RecentItem, error) {
	h, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	if h.Recents == nil {
		return []domain.RecentItem{}, nil
	}
	return h.Recents, nil
}

// UpdatedToday reports whether the newest batch is dated today in UTC.
func (s *HistoryService) UpdatedToday(ctx context.Context) (bool, error) {
	h, err := s.History(ctx)
	if err != nil {
		return false, err
	}
	return h.UpdatedOn(domain.BatchDate(s.now())), nil
}

// Seed loads the stored state into tracker so presentation layers have
// something to show before the first cycle completes.
func (s *HistoryService) Seed(ctx context.Context, tracker *SnapshotTracker) error {
	h, err := s.History(ctx)
	if err != nil {
		return err
	}
	tracker.SetUpdateToday(h.UpdatedOn(domain.BatchDate(s.now())))
	tracker.SetRecents(h.Recents)
	return nil
}
