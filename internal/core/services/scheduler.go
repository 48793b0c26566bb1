package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driven"
	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyRetention is the number of runs kept per task.
const historyRetention = 100

// Scheduler runs the reconcile task on an interval and keeps a run log.
type Scheduler struct {
	store      driven.SchedulerStore
	reconciler driving.Reconciler
	observer   driving.CycleObserver
	tick       time.Duration
	now        func() time.Time

	mu       sync.Mutex
	config   domain.SchedulerConfig
	dirty    bool
	running  bool
	inflight map[string]bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
// observer receives the events of every scheduled cycle and may be nil.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	reconciler driving.Reconciler,
	observer driving.CycleObserver,
) *Scheduler {
	return &Scheduler{
		config:     config,
		store:      store,
		reconciler: reconciler,
		observer:   observer,
		tick:       1 * time.Minute,
		now:        time.Now,
		inflight:   make(map[string]bool),
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		log.Printf("scheduler: failed to initialise tasks: %v", err)
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// UpdateConfig replaces the configuration. Task state is refreshed on the
// next tick.
func (s *Scheduler) UpdateConfig(config domain.SchedulerConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = config
	s.dirty = true
}

// RecentRuns returns the latest recorded runs of a task.
func (s *Scheduler) RecentRuns(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	return s.store.GetTaskHistory(ctx, taskID, limit)
}

func (s *Scheduler) currentConfig() domain.SchedulerConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	cfg := s.currentConfig()
	return s.ensureTask(ctx, domain.TaskIDCatalogReconcile, "Catalog Reconcile",
		cfg.Effective(domain.TaskIDCatalogReconcile))
}

// ensureTask creates or updates a task in the store. A new task is due
// immediately.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		task = &domain.ScheduledTask{ID: id, Name: name, Interval: cfg.Interval}
	}
	task.Apply(cfg, s.now())
	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.reloadIfChanged(ctx)
			s.checkAndRunDueTasks(ctx)
		}
	}
}

func (s *Scheduler) reloadIfChanged(ctx context.Context) {
	s.mu.Lock()
	dirty := s.dirty
	s.dirty = false
	s.mu.Unlock()

	if !dirty {
		return
	}
	if err := s.initialiseTasks(ctx); err != nil {
		log.Printf("scheduler: failed to apply new configuration: %v", err)
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		log.Printf("scheduler: failed to list tasks: %v", err)
		return
	}

	now := s.now()
	for i := range tasks {
		if tasks[i].IsDue(now) {
			s.runTask(ctx, &tasks[i])
		}
	}
}

// runTask executes a single task unless it is still running from an
// earlier tick or the scheduler has been stopped.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.mu.Lock()
	if !s.running || s.inflight[task.ID] {
		s.mu.Unlock()
		return
	}
	s.inflight[task.ID] = true
	// Added under mu so that Stop never waits on a zero counter that is
	// about to grow.
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inflight, task.ID)
			s.mu.Unlock()
		}()

		result := &domain.TaskResult{
			RunID:     uuid.New().String(),
			TaskID:    task.ID,
			StartedAt: s.now(),
		}

		var err error
		switch task.ID {
		case domain.TaskIDCatalogReconcile:
			result.ItemsFound, err = s.runCatalogReconcile(ctx)
		default:
			log.Printf("scheduler: unknown task ID: %s", task.ID)
			return
		}

		result.EndedAt = s.now()
		result.Success = err == nil
		if err != nil {
			result.Error = err.Error()
		}
		task.Record(*result)

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			log.Printf("scheduler: failed to save task %s: %v", task.ID, saveErr)
		}
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			log.Printf("scheduler: failed to record result for %s: %v", task.ID, recordErr)
		}
		if pruneErr := s.store.PruneHistory(ctx, historyRetention); pruneErr != nil {
			log.Printf("scheduler: failed to prune history: %v", pruneErr)
		}
	}()
}

// runCatalogReconcile runs one reconcile cycle and returns the number of
// new items found.
func (s *Scheduler) runCatalogReconcile(ctx context.Context) (int, error) {
	if s.reconciler == nil {
		return 0, nil
	}
	result, err := s.reconciler.Reconcile(ctx, s.observer)
	if err != nil {
		return 0, err
	}
	return len(result.NewItems), nil
}
