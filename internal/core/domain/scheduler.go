package domain

import "time"

// TaskIDCatalogReconcile identifies the scheduled reconcile cycle.
const TaskIDCatalogReconcile = "catalog-reconcile"

// DefaultReconcileInterval is how often the daemon reconciles unless
// configured otherwise.
const DefaultReconcileInterval = time.Hour

// ScheduledTask is the persisted state of a recurring task.
type ScheduledTask struct {
	ID       string
	Name     string
	Interval time.Duration
	Enabled  bool

	// LastRun and NextRun are zero until the task first runs. A zero
	// NextRun makes the task due immediately.
	LastRun time.Time
	NextRun time.Time

	// LastError is the message of the most recent failure; it is cleared
	// by the next success.
	LastError   string
	LastSuccess time.Time
}

// IsDue reports whether an enabled task should run at now.
func (t *ScheduledTask) IsDue(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// Apply takes over the enabled flag and interval of cfg. A changed interval
// reschedules the next run one new interval from now.
func (t *ScheduledTask) Apply(cfg TaskConfig, now time.Time) {
	if t.Interval != cfg.Interval {
		t.Interval = cfg.Interval
		if !t.NextRun.IsZero() {
			t.NextRun = now.Add(cfg.Interval)
		}
	}
	t.Enabled = cfg.Enabled
}

// Record updates the task state after a run and schedules the next one
// one interval after the run ended.
func (t *ScheduledTask) Record(result TaskResult) {
	t.LastRun = result.StartedAt
	t.NextRun = result.EndedAt.Add(t.Interval)
	if result.Success {
		t.LastError = ""
		t.LastSuccess = result.EndedAt
		return
	}
	t.LastError = result.Error
}

// TaskResult is one entry of the run log.
type TaskResult struct {
	RunID     string
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool

	// Error is set when Success is false.
	Error string

	// ItemsFound is the number of new catalog items the run recorded.
	ItemsFound int
}

// Duration returns how long the run took.
func (r TaskResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// SchedulerConfig is the daemon's schedule.
type SchedulerConfig struct {
	// Enabled switches every task off when false.
	Enabled bool

	TaskConfigs map[string]TaskConfig
}

// TaskConfig configures one task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// GetTaskConfig returns the configuration of taskID, or a zero TaskConfig.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// Effective returns the task configuration with the master switch applied.
func (c *SchedulerConfig) Effective(taskID string) TaskConfig {
	cfg := c.GetTaskConfig(taskID)
	cfg.Enabled = cfg.Enabled && c.Enabled
	return cfg
}

// DefaultSchedulerConfig reconciles hourly.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskIDCatalogReconcile: {Enabled: true, Interval: DefaultReconcileInterval},
		},
	}
}
