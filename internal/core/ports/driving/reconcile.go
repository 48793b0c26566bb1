package driving

import (
	"context"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

// Reconciler runs reconcile cycles: fetch the catalog and the stored
// history, record the items not seen before, persist, notify.
type Reconciler interface {
	// Reconcile runs one cycle and reports its outcome.
	// observer may be nil. Returns domain.ErrCycleInProgress if a cycle
	// for the same document is already running in this process.
	Reconcile(ctx context.Context, observer CycleObserver) (*CycleResult, error)
}

// CycleObserver receives reconcile cycle events.
//
// OnStart fires before any network call. OnTodayUpdate and
// OnDatabaseUpdate fire only after the history was persisted. OnFinish
// fires exactly once and always last, whether the cycle failed or not.
type CycleObserver interface {
	OnStart()
	OnFinish()
	OnTodayUpdate(updateToday bool)
	OnDatabaseUpdate(recents []domain.RecentItem)
}

// CycleResult describes a completed reconcile cycle.
type CycleResult struct {
	// Key is the document key that was reconciled.
	Key string

	// Date is the batch date used for the cycle.
	Date string

	// NewItems are the items first seen in this cycle.
	NewItems []domain.RecentItem

	// UpdateToday is true when today's batch holds items.
	UpdateToday bool

	// Recents is the recomputed recents list.
	Recents []domain.RecentItem

	// Written is false when the write was skipped.
	Written bool
}
