// Package cli provides the arrivals command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
	"github.com/custodia-labs/arrivals/internal/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var flagVerbose bool

// Driving ports used by commands. Set by Configure.
var (
	reconciler      driving.Reconciler
	historyService  driving.HistoryService
	snapshotService driving.SnapshotService
	cycleObserver   driving.CycleObserver
	settingsService driving.SettingsService
	scheduler       driving.Scheduler
	configWatcher   Watcher
	seeder          Seeder

	// setupErr explains why the reconcile ports are missing.
	setupErr error
)

// Watcher reloads configuration when it changes on disk.
type Watcher interface {
	Run(ctx context.Context) error
}

// Seeder loads the stored state into the snapshot before the first cycle.
type Seeder interface {
	Seed(ctx context.Context) error
}

// Services holds the ports wired by main.
type Services struct {
	Reconciler driving.Reconciler
	History    driving.HistoryService
	Snapshot   driving.SnapshotService
	Observer   driving.CycleObserver
	Settings   driving.SettingsService
	Scheduler  driving.Scheduler
	Watcher    Watcher
	Seeder     Seeder

	// SetupErr is set when settings did not allow the reconcile ports to be
	// built. Commands that need them report it.
	SetupErr error
}

// Configure installs the services used by commands.
func Configure(s Services) {
	reconciler = s.Reconciler
	historyService = s.History
	snapshotService = s.Snapshot
	cycleObserver = s.Observer
	settingsService = s.Settings
	scheduler = s.Scheduler
	configWatcher = s.Watcher
	seeder = s.Seeder
	setupErr = s.SetupErr
}

var rootCmd = &cobra.Command{
	Use:   "arrivals",
	Short: "Track new arrivals in a product catalog",
	Long: `arrivals polls a product catalog, records every item the first time it
is seen, grouped by the day it appeared, and reports whether anything new
arrived today.

Run "arrivals reconcile" once, or "arrivals daemon" to poll on a schedule.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersionInfo sets the build metadata printed by the version command.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// requireReconciler returns an error when the reconcile ports are missing.
func requireReconciler() error {
	if reconciler != nil && historyService != nil {
		return nil
	}
	if setupErr != nil {
		return fmt.Errorf("not configured: %w", setupErr)
	}
	return errors.New("reconciler not configured")
}

// requireHistory returns an error when the history port is missing.
func requireHistory() error {
	if historyService != nil {
		return nil
	}
	if setupErr != nil {
		return fmt.Errorf("not configured: %w", setupErr)
	}
	return errors.New("history service not configured")
}

// seedSnapshot fills the snapshot from the stored history. A failure is
// logged and otherwise ignored; the first cycle reports it again.
func seedSnapshot(ctx context.Context) {
	if seeder == nil {
		return
	}
	if err := seeder.Seed(ctx); err != nil {
		logger.Warn("Could not load stored history: %v", err)
	}
}
