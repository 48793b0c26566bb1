package web

import (
	"context"
	"sync"

	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
)

// mockReconciler implements driving.Reconciler for testing.
type mockReconciler struct {
	result *driving.CycleResult
	err    error
	calls  int
}

func (m *mockReconciler) Reconcile(_ context.Context, observer driving.CycleObserver) (*driving.CycleResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if observer != nil {
		observer.OnStart()
		observer.OnTodayUpdate(m.result.UpdateToday)
		observer.OnDatabaseUpdate(m.result.Recents)
		observer.OnFinish()
	}
	return m.result, nil
}

// mockHistoryService implements driving.HistoryService for testing.
type mockHistoryService struct {
	history      *domain.History
	updatedToday bool
	err          error
}

func (m *mockHistoryService) History(_ context.Context) (*domain.History, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.history == nil {
		return &domain.History{}, nil
	}
	return m.history, nil
}

func (m *mockHistoryService) Recents(ctx context.Context) ([]domain.RecentItem, error) {
	h, err := m.History(ctx)
	if err != nil {
		return nil, err
	}
	if h.Recents == nil {
		return []domain.RecentItem{}, nil
	}
	return h.Recents, nil
}

func (m *mockHistoryService) UpdatedToday(_ context.Context) (bool, error) {
	return m.updatedToday, m.err
}

// fakeSnapshots is a minimal snapshot service that also observes cycles.
type fakeSnapshots struct {
	mu   sync.Mutex
	snap domain.Snapshot
	subs []chan domain.Snapshot
}

func (f *fakeSnapshots) Snapshot() domain.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap.Clone()
}

func (f *fakeSnapshots) Subscribe() (<-chan domain.Snapshot, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan domain.Snapshot, 8)
	f.subs = append(f.subs, ch)
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, c := range f.subs {
				if c == ch {
					f.subs = append(f.subs[:i], f.subs[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}
}

func (f *fakeSnapshots) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *fakeSnapshots) set(fn func(*domain.Snapshot)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.snap)
	for _, ch := range f.subs {
		ch <- f.snap.Clone()
	}
}

func (f *fakeSnapshots) OnStart()  { f.set(func(s *domain.Snapshot) { s.Fetching = true }) }
func (f *fakeSnapshots) OnFinish() { f.set(func(s *domain.Snapshot) { s.Fetching = false }) }
func (f *fakeSnapshots) OnTodayUpdate(b bool) {
	f.set(func(s *domain.Snapshot) { s.UpdateToday = b })
}
func (f *fakeSnapshots) OnDatabaseUpdate(r []domain.RecentItem) {
	f.set(func(s *domain.Snapshot) { s.Recents = r })
}

func sampleHistory() *domain.History {
	return &domain.History{
		Batches: []domain.DatedBatch{
			{Date: "20240312", Items: []domain.RecentItem{
				{ID: "p3", Name: "MONSTERA", URL: "https://example.com/p3"},
			}},
			{Date: "20240311", Items: []domain.RecentItem{
				{ID: "p1", Name: "FICUS", URL: "https://example.com/p1"},
			}},
		},
		Recents: []domain.RecentItem{
			{ID: "p3", Name: "MONSTERA", URL: "https://example.com/p3"},
			{ID: "p1", Name: "FICUS", URL: "https://example.com/p1"},
		},
	}
}
