package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driven"
	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
	"github.com/custodia-labs/arrivals/internal/logger"
)

// Ensure ReconcileService implements the interface.
var _ driving.Reconciler = (*ReconcileService)(nil)

// ReconcileService runs reconcile cycles against one history document.
type ReconcileService struct {
	source        driven.CatalogSource
	store         driven.DocumentStore
	key           string
	skipUnchanged bool
	now           func() time.Time

	mu      sync.Mutex
	running bool
}

// ReconcileOption configures a ReconcileService.
type ReconcileOption func(*ReconcileService)

// WithSkipUnchanged skips the write when a cycle finds nothing new today.
func WithSkipUnchanged(skip bool) ReconcileOption {
	return func(s *ReconcileService) {
		s.skipUnchanged = skip
	}
}

// WithClock overrides the clock used to date new batches.
func WithClock(now func() time.Time) ReconcileOption {
	return func(s *ReconcileService) {
		s.now = now
	}
}

// NewReconcileService creates a reconcile service for the document stored
// under key.
func NewReconcileService(
	source driven.CatalogSource,
	store driven.DocumentStore,
	key string,
	opts ...ReconcileOption,
) *ReconcileService {
	s := &ReconcileService{
		source: source,
		store:  store,
		key:    key,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Running reports whether a cycle is in progress.
func (s *ReconcileService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Reconcile runs one cycle. A rejected concurrent call returns
// domain.ErrCycleInProgress without notifying observer.
//
// Once started, a cycle runs to completion: cancelling ctx does not
// abort it. Values carried by ctx still reach the collaborators, which
// own their timeouts.
func (s *ReconcileService) Reconcile(ctx context.Context, observer driving.CycleObserver) (*driving.CycleResult, error) {
	if observer == nil {
		observer = NopObserver{}
	}
	if !s.acquire() {
		return nil, fmt.Errorf("%w: %s", domain.ErrCycleInProgress, s.key)
	}
	defer s.release()
	ctx = context.WithoutCancel(ctx)

	observer.OnStart()
	defer observer.OnFinish()

	logger.Section("Reconcile")
	defer logger.Elapsed("reconcile", time.Now())

	date := domain.BatchDate(s.now())
	logger.Debug("Reconciling %s for %s", s.key, date)

	// 1. Fetch catalog and history concurrently
	catalog, history, idx, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("Catalog lists %d items, history holds %d", len(catalog), len(idx))

	// 2. Delta and merge
	batch := domain.NewBatch(catalog, idx, date)
	updateToday, err := history.Merge(batch)
	if err != nil {
		return nil, err
	}
	logger.Info("Found %d new items (updated today: %t)", len(batch.Items), updateToday)

	result := &driving.CycleResult{
		Key:         s.key,
		Date:        date,
		NewItems:    batch.Items,
		UpdateToday: updateToday,
		Recents:     history.Recents,
	}
	if result.Recents == nil {
		result.Recents = []domain.RecentItem{}
	}

	// 3. Persist
	if s.skipUnchanged && !updateToday {
		logger.Debug("Nothing new today, skipping write")
	} else {
		if err := s.store.Update(ctx, s.key, *history); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
		}
		result.Written = true
	}

	// 4. Notify
	observer.OnTodayUpdate(result.UpdateToday)
	observer.OnDatabaseUpdate(result.Recents)

	return result, nil
}

// fetch loads the catalog and the history in parallel. The index is built
// as soon as the history arrives.
func (s *ReconcileService) fetch(ctx context.Context) ([]domain.CatalogItem, *domain.History, domain.IDIndex, error) {
	var (
		wg       sync.WaitGroup
		catalog  []domain.CatalogItem
		history  *domain.History
		idx      domain.IDIndex
		fetchErr error
		readErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		defer logger.Elapsed("catalog fetch", time.Now())
		catalog, fetchErr = s.source.FetchCatalog(ctx)
	}()
	go func() {
		defer wg.Done()
		defer logger.Elapsed("history read", time.Now())
		history, readErr = s.store.Get(ctx, s.key)
		if readErr != nil {
			return
		}
		if history == nil {
			history = &domain.History{}
		}
		idx = history.Index()
	}()
	wg.Wait()

	var errs []error
	if fetchErr != nil {
		errs = append(errs, fmt.Errorf("%w: %w", domain.ErrSourceFetch, fetchErr))
	}
	if readErr != nil {
		errs = append(errs, fmt.Errorf("%w: %w", domain.ErrStoreRead, readErr))
	}
	if len(errs) > 0 {
		return nil, nil, nil, errors.Join(errs...)
	}
	return catalog, history, idx, nil
}

func (s *ReconcileService) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *ReconcileService) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}
