package driving

import (
	"context"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

// Scheduler runs the reconcile task periodically.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or an error occurs.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error

	// UpdateConfig replaces the scheduler configuration.
	// Takes effect on the next tick.
	UpdateConfig(config domain.SchedulerConfig)

	// RecentRuns returns the latest recorded runs of a task.
	RecentRuns(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)
}
