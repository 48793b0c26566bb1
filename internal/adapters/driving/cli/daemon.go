package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arrivals/internal/adapters/driving/web"
	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/logger"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Reconcile the catalog on a schedule",
	Long: `Run reconcile cycles in the background on the configured interval until
interrupted. The first cycle runs immediately.

Changes to the config file are picked up without a restart. Use --addr to
also serve the web dashboard.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent scheduled runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	daemonCmd.Flags().String("addr", "", "also serve the web dashboard on this address (e.g. :8080)")
	runsCmd.Flags().IntP("limit", "n", 10, "number of runs to show")
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(runsCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if err := requireReconciler(); err != nil {
		return err
	}
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}

	logger.SetTimestamps(true)
	seedSnapshot(cmd.Context())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if settingsService != nil {
		if cfg := settingsService.SchedulerConfig(); !cfg.Effective(domain.TaskIDCatalogReconcile).Enabled {
			logger.Warn("Scheduler is disabled; enable it with 'arrivals settings set scheduler.enabled true'")
		}
	}

	if configWatcher != nil {
		go func() {
			if err := configWatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("config watcher: stopped: %v", err)
			}
		}()
	}

	if addr != "" {
		server, err := web.NewServer(&web.Ports{
			Reconciler: reconciler,
			History:    historyService,
			Snapshot:   snapshotService,
			Observer:   cycleObserver,
		})
		if err != nil {
			return err
		}
		go func() {
			if err := server.Run(ctx, addr); err != nil {
				log.Printf("web: server stopped: %v", err)
			}
		}()
		logger.Info("Dashboard listening on http://localhost%s", addr)
	}

	logger.Info("Daemon started")
	err = scheduler.Start(ctx)
	if stopErr := scheduler.Stop(); stopErr != nil {
		log.Printf("scheduler: stop error: %v", stopErr)
	}
	logger.Info("Daemon stopped")

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runRuns(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("%w: --limit must be positive", domain.ErrInvalidInput)
	}

	runs, err := scheduler.RecentRuns(cmd.Context(), domain.TaskIDCatalogReconcile, limit)
	if err != nil {
		return fmt.Errorf("failed to read run log: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}
	for _, run := range runs {
		status := "ok"
		if !run.Success {
			status = "failed: " + run.Error
		}
		fmt.Fprintf(out, "%s  %-8s  %d new  %s\n",
			run.StartedAt.Local().Format(time.DateTime),
			run.Duration().Round(time.Millisecond),
			run.ItemsFound, status)
	}
	return nil
}
