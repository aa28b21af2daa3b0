package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"racing-api/internal/domain"
	"racing-api/internal/middleware"
	"racing-api/internal/recordschema"
	"racing-api/internal/service/standings"
)

// RouterConfig holds everything NewRouter wires together.
type RouterConfig struct {
	Registry  *recordschema.Registry
	Records   RecordService
	Standings StandingsService
	// Health reports whether the store answers. Nil means always healthy.
	Health func(ctx context.Context) error
	Logger *slog.Logger

	CORSAllowedOrigins []string
	// RateLimit is nil to disable rate limiting.
	RateLimit *middleware.RateLimitConfig
	Version   string
}

// NewRouter builds the HTTP handler: one route set per registered table,
// the standings views, /openapi.json and /healthz. ctx bounds the
// lifetime of background middleware work.
func NewRouter(ctx context.Context, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	if cfg.RateLimit != nil {
		r.Use(middleware.RateLimiter(ctx, *cfg.RateLimit))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.HeaderRequestID},
		ExposedHeaders: []string{"Content-Range", middleware.HeaderRequestID},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		table, _, _ := strings.Cut(strings.TrimPrefix(req.URL.Path, "/"), "/")
		if _, err := cfg.Registry.Lookup(table); err != nil {
			writeError(w, req, logger, err)
			return
		}
		writeError(w, req, logger, domain.ErrNotFound("no route for %s %s", req.Method, req.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{
			Code:    http.StatusMethodNotAllowed,
			Message: http.StatusText(http.StatusMethodNotAllowed),
		})
	})

	// Standings paths are static and win over the /{table}/{id} patterns.
	var views []string
	if cfg.Standings != nil {
		for _, v := range cfg.Standings.Views() {
			r.Get(v.Path, standingsHandler(cfg.Standings, v.Name, logger))
			views = append(views, v.Name)
		}
	}
	for _, name := range cfg.Registry.Tables() {
		schema, _ := cfg.Registry.Lookup(name)
		newRecordHandler(schema, cfg.Records, logger).register(r)
	}
	logger.Info("routes registered", "tables", cfg.Registry.Tables(), "views", views)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(req.Context()); err != nil {
				writeError(w, req, logger, domain.ErrStoreUnavailable("ping", err))
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/openapi.json", func(w http.ResponseWriter, req *http.Request) {
		var sv []standings.View
		if cfg.Standings != nil {
			sv = cfg.Standings.Views()
		}
		doc := BuildOpenAPI(cfg.Registry, sv, cfg.Version)
		body, err := doc.MarshalJSON()
		if err != nil {
			writeError(w, req, logger, err)
			return
		}
		writeRawJSON(w, http.StatusOK, body)
	})

	return r
}
