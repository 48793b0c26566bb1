package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/arrivals/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

The TUI shows whether anything arrived today and lists the most recent
arrivals. A reconcile runs on launch.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Show item link
  r        - Reconcile now
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().Bool("schedule", false, "run the scheduler in the background while the TUI is open")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if err := requireReconciler(); err != nil {
		return err
	}

	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	seedSnapshot(cmd.Context())

	schedule, _ := cmd.Flags().GetBool("schedule")
	if schedule && scheduler != nil {
		schedulerCtx, schedulerCancel := context.WithCancel(cmd.Context())
		defer schedulerCancel()

		go func() {
			if err := scheduler.Start(schedulerCtx); err != nil && schedulerCtx.Err() == nil {
				// Scheduler errors shouldn't block the TUI
				fmt.Fprintf(os.Stderr, "scheduler stopped: %v\n", err)
			}
		}()

		defer func() {
			if err := scheduler.Stop(); err != nil {
				fmt.Fprintf(os.Stderr, "scheduler stop error: %v\n", err)
			}
		}()
	}

	app, err := tui.NewApp(&tui.Ports{
		Reconciler: reconciler,
		Snapshot:   snapshotService,
		Observer:   cycleObserver,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
