package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"racing-api/internal/config"
	"racing-api/internal/db"
)

// OpenStore opens the configured store and, when enabled, brings the
// racing schema up to date.
func OpenStore(cfg *config.Config, logger *slog.Logger) (*db.Pools, error) {
	pools, err := db.Open(cfg.DBDriver, cfg.DBPath, db.SQLiteOptions{
		ReadConns:   cfg.ReadPoolSize,
		BusyTimeout: cfg.StoreTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.RunMigrations(pools.Write); err != nil {
			_ = pools.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		v, _ := db.MigrationVersion(pools.Write)
		logger.Info("migrations applied", "version", v)
	}
	return pools, nil
}

// Serve opens the store, wires the application and serves HTTP on
// cfg.ListenAddr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) error {
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	pools, err := OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer pools.Close() //nolint:errcheck

	a, err := New(ctx, Deps{Cfg: cfg, Pools: pools, Logger: logger, Version: version})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", "addr", cfg.ListenAddr, "driver", pools.Driver, "path", cfg.DBPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
