package driving

import "github.com/custodia-labs/arrivals/internal/core/domain"

// SnapshotService exposes the presentation state built by reconcile cycles.
type SnapshotService interface {
	// Snapshot returns the current state.
	Snapshot() domain.Snapshot

	// Subscribe returns a channel that receives every state change and a
	// function that ends the subscription. Slow subscribers miss
	// intermediate states but always see the latest one.
	Subscribe() (<-chan domain.Snapshot, func())
}
