package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benchboard/benchboard/internal/api"
	"github.com/spf13/cobra"
)

// serveCmd runs the REST API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the leaderboard REST API",
	Long: `Start the HTTP server exposing benchmarks and submitted systems under /api,
plus Prometheus metrics under /metrics.

Identity is taken from the X-User-Email header, which is expected to be set
by an authenticating proxy in front of the server.

Examples:
  # Serve on the default address with a local SQLite store
  benchboard serve

  # Serve from PostgreSQL with configs from a custom directory
  BENCHBOARD_STORE_DB_CONNECT="host=db dbname=benchboard user=bb" \
    benchboard serve --store-backend postgresql --config-dir ./configs --addr :9000`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := api.NewServer(cfg, newConfigLoader(), storeManager.GetSystemStore())
		_, _ = fmt.Fprintf(os.Stderr, "benchboard %s (%s) listening on %s\n", version, cfg.Env, cfg.Addr)
		return srv.Listen(ctx)
	},
}
