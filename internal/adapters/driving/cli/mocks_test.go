package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

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
	if observer != nil {
		observer.OnStart()
		defer observer.OnFinish()
	}
	if m.err != nil {
		return nil, m.err
	}
	if observer != nil {
		observer.OnTodayUpdate(m.result.UpdateToday)
		observer.OnDatabaseUpdate(m.result.Recents)
	}
	return m.result, nil
}

// mockHistoryService implements driving.HistoryService for testing.
type mockHistoryService struct {
	history *domain.History
	updated bool
	err     error
}

func (m *mockHistoryService) History(_ context.Context) (*domain.History, error) {
	if m.err != nil {
		return nil, m.err
	}
	h := m.history.Clone()
	return &h, nil
}

func (m *mockHistoryService) Recents(_ context.Context) ([]domain.RecentItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.history.Recents, nil
}

func (m *mockHistoryService) UpdatedToday(_ context.Context) (bool, error) {
	return m.updated, m.err
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings  domain.AppSettings
	scheduler domain.SchedulerConfig
	set       map[string]string
	setErr    error
	invalid   error
}

func newMockSettingsService() *mockSettingsService {
	settings := domain.DefaultAppSettings()
	settings.Catalog.URL = "https://shop.example.com/api/products"
	return &mockSettingsService{
		settings:  settings,
		scheduler: domain.DefaultSchedulerConfig(),
		set:       make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"catalog.url", "store.backend", "github.token"}
}

func (m *mockSettingsService) IsSecret(key string) bool {
	return strings.HasSuffix(key, ".token")
}

func (m *mockSettingsService) Validate() error {
	return m.invalid
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) SchedulerConfig() domain.SchedulerConfig {
	return m.scheduler
}

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	runs    []domain.TaskResult
	err     error
	taskID  string
	limit   int
	started bool
	stopped bool
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.started = true
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.stopped = true
	return nil
}

func (m *mockScheduler) UpdateConfig(_ domain.SchedulerConfig) {}

func (m *mockScheduler) RecentRuns(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.taskID = taskID
	m.limit = limit
	return m.runs, m.err
}

// recordingObserver implements driving.CycleObserver for testing.
type recordingObserver struct {
	events []string
}

func (r *recordingObserver) OnStart()             { r.events = append(r.events, "start") }
func (r *recordingObserver) OnFinish()            { r.events = append(r.events, "finish") }
func (r *recordingObserver) OnTodayUpdate(_ bool) { r.events = append(r.events, "today") }
func (r *recordingObserver) OnDatabaseUpdate(_ []domain.RecentItem) {
	r.events = append(r.events, "database")
}

type mockSeeder struct {
	err   error
	calls int
}

func (m *mockSeeder) Seed(_ context.Context) error {
	m.calls++
	return m.err
}

func sampleHistory() *domain.History {
	return &domain.History{
		Batches: []domain.DatedBatch{
			{Date: "20240302", Items: []domain.RecentItem{
				{ID: "p3", Name: "STRING OF PEARLS", URL: "https://shop.example.com/p3"},
			}},
			{Date: "20240301", Items: []domain.RecentItem{
				{ID: "p1", Name: "MONSTERA", URL: "https://shop.example.com/p1"},
				{ID: "p2", Name: "FICUS", URL: "https://shop.example.com/p2"},
			}},
		},
		Recents: []domain.RecentItem{
			{ID: "p3", Name: "STRING OF PEARLS", URL: "https://shop.example.com/p3"},
			{ID: "p1", Name: "MONSTERA", URL: "https://shop.example.com/p1"},
			{ID: "p2", Name: "FICUS", URL: "https://shop.example.com/p2"},
		},
	}
}

// testServices bundles the mocks installed by setupCLITest.
type testServices struct {
	reconciler *mockReconciler
	history    *mockHistoryService
	settings   *mockSettingsService
	scheduler  *mockScheduler
	observer   *recordingObserver
}

// setupCLITest installs mocks for every port and returns a cleanup func
// that restores the previous services.
func setupCLITest() (*testServices, func()) {
	old := Services{
		Reconciler: reconciler,
		History:    historyService,
		Snapshot:   snapshotService,
		Observer:   cycleObserver,
		Settings:   settingsService,
		Scheduler:  scheduler,
		Watcher:    configWatcher,
		Seeder:     seeder,
		SetupErr:   setupErr,
	}

	h := sampleHistory()
	ts := &testServices{
		reconciler: &mockReconciler{result: &driving.CycleResult{
			Key:         "db.json",
			Date:        "20240302",
			NewItems:    h.Batches[0].Items,
			UpdateToday: true,
			Recents:     h.Recents,
			Written:     true,
		}},
		history:   &mockHistoryService{history: h, updated: true},
		settings:  newMockSettingsService(),
		scheduler: &mockScheduler{},
		observer:  &recordingObserver{},
	}
	Configure(Services{
		Reconciler: ts.reconciler,
		History:    ts.history,
		Observer:   ts.observer,
		Settings:   ts.settings,
		Scheduler:  ts.scheduler,
	})

	return ts, func() { Configure(old) }
}

// executeCommand runs the root command with args and returns everything
// written to stdout and stderr. Flags are reset first because cobra keeps
// their values between executions.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommandWithInput(t, "", args...)
}

func executeCommandWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue) //nolint:errcheck
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
