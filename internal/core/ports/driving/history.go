package driving

import (
	"context"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

// HistoryService provides read-only views of the stored history.
type HistoryService interface {
	// History returns the full stored document.
	History(ctx context.Context) (*domain.History, error)

	// Recents returns the stored recents list.
	Recents(ctx context.Context) ([]domain.RecentItem, error)

	// UpdatedToday reports whether the newest batch is dated today.
	UpdatedToday(ctx context.Context) (bool, error)
}
