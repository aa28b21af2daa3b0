package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"racing-api/internal/app"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		Example: `  # Serve a local SQLite store, creating the racing tables
  RUN_MIGRATIONS=true racing serve --db-path ./racing.sqlite

  # Serve a DuckDB file on another port
  racing serve --db-driver duckdb --db-path ./f1.duckdb --listen :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags, cmd.Flags())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.ListenAddr = listen
			}
			logger := cfg.NewLogger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Serve(ctx, cfg, logger, version)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (default $LISTEN_ADDR or :8080)")
	return cmd
}
