package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	if ports.Reconciler == nil {
		ports.Reconciler = &mockReconciler{}
	}
	if ports.History == nil {
		ports.History = &mockHistoryService{}
	}
	s, err := NewServer(ports)
	require.NoError(t, err)
	return s
}

func TestHandleReconcile(t *testing.T) {
	t.Run("returns cycle summary", func(t *testing.T) {
		rec := &mockReconciler{result: &driving.CycleResult{
			Key:         "db.json",
			Date:        "20240312",
			NewItems:    []domain.RecentItem{{ID: "p3", Name: "MONSTERA", URL: "u3"}},
			UpdateToday: true,
			Recents:     []domain.RecentItem{{ID: "p3", Name: "MONSTERA", URL: "u3"}},
			Written:     true,
		}}
		observer := &recordingObserver{}
		s := newTestServer(t, &Ports{Reconciler: rec, Snapshot: observer})

		result, output, err := s.handleReconcile(context.Background(), nil, ReconcileInput{})
		require.NoError(t, err)
		assert.Nil(t, result)
		assert.Equal(t, "20240312", output.Date)
		assert.Equal(t, domain.HeadlineUpdated, output.Headline)
		assert.True(t, output.UpdateToday)
		assert.True(t, output.Written)
		require.Len(t, output.NewItems, 1)
		assert.Equal(t, "Monstera", output.NewItems[0].DisplayName)
		assert.Equal(t, "MONSTERA", output.NewItems[0].Name)
		assert.Len(t, output.Recents, 1)
		assert.Equal(t, 1, rec.calls)
		assert.Same(t, observer, rec.observer)
	})

	t.Run("nothing new today", func(t *testing.T) {
		rec := &mockReconciler{result: &driving.CycleResult{
			Date:     "20240312",
			NewItems: []domain.RecentItem{},
			Recents:  []domain.RecentItem{},
		}}
		s := newTestServer(t, &Ports{Reconciler: rec})

		_, output, err := s.handleReconcile(context.Background(), nil, ReconcileInput{})
		require.NoError(t, err)
		assert.Equal(t, domain.HeadlineNoUpdate, output.Headline)
		assert.False(t, output.UpdateToday)
		assert.Empty(t, output.NewItems)
		assert.NotNil(t, output.Recents)
	})

	t.Run("propagates reconcile error", func(t *testing.T) {
		rec := &mockReconciler{err: domain.ErrCycleInProgress}
		s := newTestServer(t, &Ports{Reconciler: rec})

		_, _, err := s.handleReconcile(context.Background(), nil, ReconcileInput{})
		assert.ErrorIs(t, err, domain.ErrCycleInProgress)
	})
}

func TestHandleGetRecents(t *testing.T) {
	t.Run("returns stored recents", func(t *testing.T) {
		s := newTestServer(t, &Ports{History: &mockHistoryService{
			history:      sampleHistory(),
			updatedToday: true,
		}})

		_, output, err := s.handleGetRecents(context.Background(), nil, RecentsInput{})
		require.NoError(t, err)
		assert.Equal(t, 3, output.Count)
		assert.True(t, output.UpdatedToday)
		assert.Equal(t, "p3", output.Recents[0].ID)
		assert.Equal(t, "Pilea <mini>", output.Recents[2].DisplayName)
	})

	t.Run("limit truncates", func(t *testing.T) {
		s := newTestServer(t, &Ports{History: &mockHistoryService{history: sampleHistory()}})

		_, output, err := s.handleGetRecents(context.Background(), nil, RecentsInput{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "p1", output.Recents[1].ID)
	})

	t.Run("empty history", func(t *testing.T) {
		s := newTestServer(t, &Ports{})

		_, output, err := s.handleGetRecents(context.Background(), nil, RecentsInput{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Recents)
	})

	t.Run("history error", func(t *testing.T) {
		storeErr := errors.New("store down")
		s := newTestServer(t, &Ports{History: &mockHistoryService{err: storeErr}})

		_, _, err := s.handleGetRecents(context.Background(), nil, RecentsInput{})
		assert.ErrorIs(t, err, storeErr)
	})
}
