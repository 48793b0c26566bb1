package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/arrivals/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driven"
	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
)

// eventLog records calls across mocks in order.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *eventLog) count(event string) int {
	n := 0
	for _, e := range l.all() {
		if e == event {
			n++
		}
	}
	return n
}

// mockCatalogSource implements driven.CatalogSource for testing.
type mockCatalogSource struct {
	log   *eventLog
	items []domain.CatalogItem
	err   error

	// wait, when set, blocks FetchCatalog until it is closed or ctx ends.
	wait <-chan struct{}

	// onFetch runs at the start of FetchCatalog.
	onFetch func()
}

func (m *mockCatalogSource) FetchCatalog(ctx context.Context) ([]domain.CatalogItem, error) {
	if m.log != nil {
		m.log.add("fetch")
	}
	if m.onFetch != nil {
		m.onFetch()
	}
	if m.wait != nil {
		select {
		case <-m.wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

// mockDocumentStore wraps the memory store with failure injection.
type mockDocumentStore struct {
	*memory.DocumentStore
	log       *eventLog
	getErr    error
	updateErr error

	// onGet is closed on the first Get call.
	onGet     chan struct{}
	onGetOnce sync.Once
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{DocumentStore: memory.NewDocumentStore()}
}

func (m *mockDocumentStore) Get(ctx context.Context, key string) (*domain.History, error) {
	if m.log != nil {
		m.log.add("get")
	}
	if m.onGet != nil {
		m.onGetOnce.Do(func() { close(m.onGet) })
	}
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.DocumentStore.Get(ctx, key)
}

func (m *mockDocumentStore) Update(ctx context.Context, key string, h domain.History) error {
	if m.log != nil {
		m.log.add("update")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.updateErr != nil {
		return m.updateErr
	}
	return m.DocumentStore.Update(ctx, key, h)
}

// recordingObserver implements driving.CycleObserver for testing.
type recordingObserver struct {
	log *eventLog
}

func (o *recordingObserver) OnStart()  { o.log.add("start") }
func (o *recordingObserver) OnFinish() { o.log.add("finish") }
func (o *recordingObserver) OnTodayUpdate(updateToday bool) {
	o.log.add("today:%t", updateToday)
}
func (o *recordingObserver) OnDatabaseUpdate(recents []domain.RecentItem) {
	ids := make([]string, len(recents))
	for i, r := range recents {
		ids[i] = r.ID
	}
	o.log.add("db:%s", strings.Join(ids, ","))
}

// mockReconciler implements driving.Reconciler for testing.
type mockReconciler struct {
	mu       sync.Mutex
	calls    int
	newItems int
	err      error
	observer driving.CycleObserver
}

func (m *mockReconciler) Reconcile(_ context.Context, observer driving.CycleObserver) (*driving.CycleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.observer = observer
	if m.err != nil {
		return nil, m.err
	}
	return &driving.CycleResult{NewItems: make([]domain.RecentItem, m.newItems)}, nil
}

func (m *mockReconciler) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var errBoom = errors.New("boom")

// Ensure mocks implement interfaces
var (
	_ driven.CatalogSource  = (*mockCatalogSource)(nil)
	_ driven.DocumentStore  = (*mockDocumentStore)(nil)
	_ driving.CycleObserver = (*recordingObserver)(nil)
	_ driving.Reconciler    = (*mockReconciler)(nil)
)
