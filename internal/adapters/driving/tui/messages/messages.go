// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
)

// SnapshotChanged carries a new presentation state.
type SnapshotChanged struct {
	Snapshot domain.Snapshot
}

// SubscriptionClosed is sent when the snapshot subscription ends.
type SubscriptionClosed struct{}

// ReconcileRequested asks the app to start a cycle.
type ReconcileRequested struct{}

// ReconcileCompleted carries the outcome of a cycle started by the TUI.
type ReconcileCompleted struct {
	Result *driving.CycleResult
	Err    error
}
