package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arrivals/internal/adapters/driving/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web dashboard",
	Long: `Serve a small web dashboard showing today's status and the most recent
arrivals. The page updates live over a websocket while a reconcile runs.

The JSON API is served under /api.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requireReconciler(); err != nil {
		return err
	}

	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}

	seedSnapshot(cmd.Context())

	server, err := web.NewServer(&web.Ports{
		Reconciler: reconciler,
		History:    historyService,
		Snapshot:   snapshotService,
		Observer:   cycleObserver,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Dashboard listening on http://localhost%s\n", addr)
	return server.Run(ctx, addr)
}
