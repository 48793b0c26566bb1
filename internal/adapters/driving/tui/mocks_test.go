package tui

import (
	"context"
	"sync"

	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
)

// mockReconciler implements driving.Reconciler for testing.
type mockReconciler struct {
	mu       sync.Mutex
	result   *driving.CycleResult
	err      error
	calls    int
	observer driving.CycleObserver
}

func (m *mockReconciler) Reconcile(_ context.Context, observer driving.CycleObserver) (*driving.CycleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.observer = observer
	return m.result, m.err
}

func (m *mockReconciler) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockSnapshotService implements driving.SnapshotService for testing.
type mockSnapshotService struct {
	snap   domain.Snapshot
	ch     chan domain.Snapshot
	closed bool
}

func newMockSnapshotService(snap domain.Snapshot) *mockSnapshotService {
	return &mockSnapshotService{snap: snap, ch: make(chan domain.Snapshot, 1)}
}

func (m *mockSnapshotService) Snapshot() domain.Snapshot {
	return m.snap
}

func (m *mockSnapshotService) Subscribe() (<-chan domain.Snapshot, func()) {
	return m.ch, func() {
		if !m.closed {
			m.closed = true
			close(m.ch)
		}
	}
}
