package mcp

import (
	"context"

	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
)

// mockReconciler implements driving.Reconciler for testing.
type mockReconciler struct {
	result   *driving.CycleResult
	err      error
	calls    int
	observer driving.CycleObserver
}

func (m *mockReconciler) Reconcile(_ context.Context, observer driving.CycleObserver) (*driving.CycleResult, error) {
	m.calls++
	m.observer = observer
	if m.err != nil {
		return nil, m.err
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
	if m.err != nil {
		return false, m.err
	}
	return m.updatedToday, nil
}

// recordingObserver counts cycle events.
type recordingObserver struct {
	starts int
}

func (o *recordingObserver) OnStart()                             { o.starts++ }
func (o *recordingObserver) OnFinish()                            {}
func (o *recordingObserver) OnTodayUpdate(bool)                   {}
func (o *recordingObserver) OnDatabaseUpdate([]domain.RecentItem) {}

func sampleHistory() *domain.History {
	return &domain.History{
		Batches: []domain.DatedBatch{
			{Date: "20240312", Items: []domain.RecentItem{
				{ID: "p3", Name: "MONSTERA", URL: "https://example.com/p3"},
			}},
			{Date: "20240311", Items: []domain.RecentItem{
				{ID: "p1", Name: "FICUS", URL: "https://example.com/p1"},
				{ID: "p2", Name: "PILEA <mini>", URL: "https://example.com/p2"},
			}},
		},
		Recents: []domain.RecentItem{
			{ID: "p3", Name: "MONSTERA", URL: "https://example.com/p3"},
			{ID: "p1", Name: "FICUS", URL: "https://example.com/p1"},
			{ID: "p2", Name: "PILEA <mini>", URL: "https://example.com/p2"},
		},
	}
}
