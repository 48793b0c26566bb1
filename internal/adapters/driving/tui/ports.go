// Package tui provides an interactive terminal user interface for arrivals.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Reconciler runs a cycle on launch and on demand.
	Reconciler driving.Reconciler

	// Snapshot provides the state that is rendered.
	Snapshot driving.SnapshotService

	// Observer receives the events of cycles started from the TUI.
	// It is normally the same tracker that backs Snapshot.
	Observer driving.CycleObserver
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Reconciler == nil {
		return ErrMissingReconciler
	}
	if p.Snapshot == nil {
		return ErrMissingSnapshotService
	}
	return nil
}
