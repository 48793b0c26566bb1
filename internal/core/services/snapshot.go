package services

import (
	"sync"

	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
)

// Ensure SnapshotTracker implements the interfaces.
var (
	_ driving.SnapshotService = (*SnapshotTracker)(nil)
	_ driving.CycleObserver   = (*SnapshotTracker)(nil)
)

// SnapshotTracker holds the presentation state and updates it from cycle
// events. Every change is fanned out to subscribers.
type SnapshotTracker struct {
	mu   sync.RWMutex
	snap domain.Snapshot
	subs map[int]chan domain.Snapshot
	next int
}

// NewSnapshotTracker creates a tracker with an empty, idle snapshot.
func NewSnapshotTracker() *SnapshotTracker {
	return &SnapshotTracker{
		snap: domain.Snapshot{Recents: []domain.RecentItem{}},
		subs: make(map[int]chan domain.Snapshot),
	}
}

// Snapshot returns a copy of the current state.
func (t *SnapshotTracker) Snapshot() domain.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.Clone()
}

// Subscribe returns a channel receiving every state change.
// The channel is closed by the returned cancel function.
func (t *SnapshotTracker) Subscribe() (<-chan domain.Snapshot, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.next
	t.next++
	ch := make(chan domain.Snapshot, 1)
	t.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// SetFetching marks whether a cycle is running.
func (t *SnapshotTracker) SetFetching(fetching bool) {
	t.update(func(s *domain.Snapshot) { s.Fetching = fetching })
}

// SetUpdateToday records whether today's batch holds items.
func (t *SnapshotTracker) SetUpdateToday(updateToday bool) {
	t.update(func(s *domain.Snapshot) { s.UpdateToday = updateToday })
}

// SetRecents replaces the recents list.
func (t *SnapshotTracker) SetRecents(recents []domain.RecentItem) {
	items := make([]domain.RecentItem, len(recents))
	copy(items, recents)
	t.update(func(s *domain.Snapshot) { s.Recents = items })
}

// OnStart implements driving.CycleObserver.
func (t *SnapshotTracker) OnStart() { t.SetFetching(true) }

// OnFinish implements driving.CycleObserver.
func (t *SnapshotTracker) OnFinish() { t.SetFetching(false) }

// OnTodayUpdate implements driving.CycleObserver.
func (t *SnapshotTracker) OnTodayUpdate(updateToday bool) { t.SetUpdateToday(updateToday) }

// OnDatabaseUpdate implements driving.CycleObserver.
func (t *SnapshotTracker) OnDatabaseUpdate(recents []domain.RecentItem) { t.SetRecents(recents) }

func (t *SnapshotTracker) update(fn func(*domain.Snapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fn(&t.snap)
	for _, ch := range t.subs {
		publish(ch, t.snap.Clone())
	}
}

// publish replaces any unread value so subscribers always see the latest state.
func publish(ch chan domain.Snapshot, snap domain.Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
