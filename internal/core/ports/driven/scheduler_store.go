package driven

import (
	"context"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

// SchedulerStore persists daemon task state and the run log.
type SchedulerStore interface {
	// GetTask retrieves a scheduled task by ID.
	// Returns nil and no error if the task does not exist.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// ListTasks returns all scheduled tasks.
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask creates or updates a task.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// DeleteTask removes a task and its run log.
	DeleteTask(ctx context.Context, taskID string) error

	// RecordResult appends a run to the log.
	RecordResult(ctx context.Context, result *domain.TaskResult) error

	// GetTaskHistory returns recent runs of a task, most recent first.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// PruneHistory keeps the most recent 'keep' runs per task.
	PruneHistory(ctx context.Context, keep int) error
}
