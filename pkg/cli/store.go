package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"racing-api/internal/app"
	"racing-api/internal/config"
	"racing-api/internal/db"
)

// openStore loads the config and opens its store for an offline command.
// Commands log only warnings and errors so their output stays parseable.
func openStore(cmd *cobra.Command, flags *globalFlags) (*config.Config, *db.Pools, error) {
	cfg, err := loadConfig(flags, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	cfg.RunMigrations = false
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	pools, err := app.OpenStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pools, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
