// Package standings serves the fixed ranking aggregations: season
// standings and the all-time wins table.
package standings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"racing-api/internal/config"
	"racing-api/internal/domain"
)

// View is one standings aggregation and the route it is served on.
type View struct {
	Name   string // resource name used in Content-Range
	Path   string
	Season int
	Limit  int
	run    func(context.Context, domain.StandingsQuery) ([]domain.StandingsRow, error)
}

// Service runs standings views against a StandingsSource.
type Service struct {
	views   []View
	byName  map[string]View
	timeout time.Duration
	logger  *slog.Logger
}

// NewService creates a standings Service with the constructor, driver and
// wins views configured by cfg.
func NewService(src domain.StandingsSource, cfg config.StandingsConfig, timeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	cons := cfg.For(config.ConstructorStandingsView)
	drv := cfg.For(config.DriverStandingsView)
	wins := cfg.For(config.TopDriversByWinsView)
	views := []View{
		{
			Name:   config.ConstructorStandingsView,
			Path:   "/constructors/my_constructor_standings",
			Season: cons.Season,
			Limit:  cons.Limit,
			run:    src.ConstructorStandings,
		},
		{
			Name:   config.DriverStandingsView,
			Path:   "/drivers/my_driver_standings",
			Season: drv.Season,
			Limit:  drv.Limit,
			run:    src.DriverStandings,
		},
		{
			Name:   config.TopDriversByWinsView,
			Path:   "/dashboard/top_drivers_by_wins",
			Season: wins.Season,
			Limit:  wins.Limit,
			run:    src.TopDriversByWins,
		},
	}
	byName := make(map[string]View, len(views))
	for _, v := range views {
		byName[v.Name] = v
	}
	return &Service{views: views, byName: byName, timeout: timeout, logger: logger.With("component", "standings")}
}

// Views returns the configured views in route registration order.
func (s *Service) Views() []View {
	return append([]View(nil), s.views...)
}

// Standings runs the named view and returns its rows with page metadata
// computed from the row count.
func (s *Service) Standings(ctx context.Context, name string) ([]domain.StandingsRow, domain.PageMetadata, error) {
	v, ok := s.byName[name]
	if !ok {
		return nil, domain.PageMetadata{}, domain.ErrNotFound("standings view %q not found", name)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rows, err := v.run(ctx, domain.StandingsQuery{Season: v.Season, Limit: v.Limit})
	if err != nil {
		var unavailable *domain.StoreUnavailableError
		if !errors.As(err, &unavailable) && errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.PageMetadata{}, domain.ErrStoreUnavailable(name, err)
		}
		return nil, domain.PageMetadata{}, fmt.Errorf("%s: %w", name, err)
	}
	if len(rows) > v.Limit {
		rows = rows[:v.Limit]
	}
	s.logger.DebugContext(ctx, "standings computed", "view", name, "season", v.Season, "rows", len(rows))
	return rows, domain.PageForCount(v.Name, len(rows)), nil
}
