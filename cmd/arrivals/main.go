// Command arrivals tracks new arrivals in a product catalog.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/arrivals/internal/adapters/driving/cli"
	"github.com/custodia-labs/arrivals/internal/wiring"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()

	app, err := wiring.Build(ctx, wiring.Options{
		ConfigDir: os.Getenv("ARRIVALS_CONFIG_DIR"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "arrivals: %v\n", err)
		return 1
	}
	defer app.Close() //nolint:errcheck

	cli.SetVersionInfo(version, commit, date)
	cli.Configure(app.Services())

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}
