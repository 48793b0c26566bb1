package mcp

import (
	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Reconciler runs reconcile cycles.
	Reconciler driving.Reconciler

	// History reads the stored history.
	History driving.HistoryService

	// Snapshot receives cycle events when set. Optional.
	Snapshot driving.CycleObserver
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Reconciler == nil {
		return ErrMissingReconciler
	}
	if p.History == nil {
		return ErrMissingHistoryService
	}
	return nil
}
