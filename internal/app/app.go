// Package app wires the store, schema registry, services and router into
// a runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"racing-api/internal/api"
	"racing-api/internal/config"
	"racing-api/internal/db"
	"racing-api/internal/db/repository"
	"racing-api/internal/middleware"
	"racing-api/internal/recordschema"
	"racing-api/internal/service/records"
	"racing-api/internal/service/standings"
)

// Deps holds the external dependencies that main() must provide: the
// loaded config, the opened store pools and the process logger.
type Deps struct {
	Cfg     *config.Config
	Pools   *db.Pools
	Logger  *slog.Logger
	Version string
}

// App is the fully wired application.
type App struct {
	Registry  *recordschema.Registry
	Records   *records.Service
	Standings *standings.Service
	Handler   http.Handler
}

// New introspects the configured tables, builds the services and the
// router. A configured table missing from the store fails startup. ctx
// bounds introspection and the lifetime of background middleware.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// === Schema registry ===
	schemaRepo := repository.NewSchemaRepo(deps.Pools.Read, deps.Pools.Driver)
	introspectCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	registry, err := recordschema.LoadRegistry(introspectCtx, schemaRepo, cfg.Tables)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("load schema registry: %w", err)
	}
	logger.Info("schema registry loaded", "tables", registry.Tables(), "driver", deps.Pools.Driver)

	// === Repositories ===
	recordRepo := repository.NewRecordRepo(deps.Pools.Write, deps.Pools.Read)
	standingsRepo := repository.NewStandingsRepo(deps.Pools.Read)

	// === Services ===
	recordSvc := records.NewService(recordRepo, cfg.StoreTimeout, logger)
	standingsSvc := standings.NewService(standingsRepo, cfg.Standings, cfg.StoreTimeout, logger)

	if cfg.SeedDemo {
		if err := seedDemo(ctx, registry, recordSvc); err != nil {
			logger.Warn("seed demo season failed", "error", err)
		}
	}

	// === Router ===
	var rl *middleware.RateLimitConfig
	if cfg.RateLimitRPS > 0 {
		rl = &middleware.RateLimitConfig{RequestsPerSecond: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst}
	}
	handler := api.NewRouter(ctx, api.RouterConfig{
		Registry:  registry,
		Records:   recordSvc,
		Standings: standingsSvc,
		Health: func(ctx context.Context) error {
			return deps.Pools.Ping(ctx, cfg.StoreTimeout)
		},
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimit:          rl,
		Version:            deps.Version,
	})

	return &App{
		Registry:  registry,
		Records:   recordSvc,
		Standings: standingsSvc,
		Handler:   handler,
	}, nil
}
