package driven

import (
	"context"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

// DocumentStore persists the history document under a key.
// No consistency is guaranteed between concurrent writers.
type DocumentStore interface {
	// Get returns the history stored under key.
	// A missing document is returned as an empty History, not an error.
	Get(ctx context.Context, key string) (*domain.History, error)

	// Update replaces the document stored under key.
	Update(ctx context.Context, key string, history domain.History) error
}
