package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Standings view names.
const (
	ConstructorStandingsView = "constructor_standings"
	DriverStandingsView      = "driver_standings"
	TopDriversByWinsView     = "top_drivers_by_wins"
)

// StandingsViews lists every standings view name in route order.
var StandingsViews = []string{ConstructorStandingsView, DriverStandingsView, TopDriversByWinsView}

// ViewConfig tunes one standings view. Zero fields fall back to the
// enclosing StandingsConfig.
type ViewConfig struct {
	Season int `yaml:"season"`
	Limit  int `yaml:"limit"`
}

// StandingsConfig holds the season filter and row caps of the standings views.
type StandingsConfig struct {
	Season int                   `yaml:"season"`
	Views  map[string]ViewConfig `yaml:"views"`
}

// DefaultStandings returns the built-in standings configuration.
func DefaultStandings() StandingsConfig {
	return StandingsConfig{
		Season: DefaultStandingsSeason,
		Views: map[string]ViewConfig{
			ConstructorStandingsView: {Limit: DefaultConstructorStandingsLimit},
			DriverStandingsView:      {Limit: DefaultDriverStandingsLimit},
			TopDriversByWinsView:     {Limit: DefaultTopDriversByWinsLimit},
		},
	}
}

// For resolves the effective configuration of a view. The wins view
// keeps its own season only: zero there means every season.
func (c StandingsConfig) For(view string) ViewConfig {
	v := c.Views[view]
	if v.Season == 0 && view != TopDriversByWinsView {
		v.Season = c.Season
	}
	return v
}

// Validate checks that every configured view has a positive cap and season.
func (c StandingsConfig) Validate() error {
	for name := range c.Views {
		v := c.For(name)
		if v.Limit <= 0 {
			return fmt.Errorf("standings view %q: limit must be positive, got %d", name, v.Limit)
		}
		if v.Season < 0 || (v.Season == 0 && name != TopDriversByWinsView) {
			return fmt.Errorf("standings view %q: season must be positive, got %d", name, v.Season)
		}
	}
	return nil
}

// merge overlays the non-zero fields of o onto c.
func (c *StandingsConfig) merge(o StandingsConfig) {
	if o.Season != 0 {
		c.Season = o.Season
	}
	for name, ov := range o.Views {
		v := c.Views[name]
		if ov.Season != 0 {
			v.Season = ov.Season
		}
		if ov.Limit != 0 {
			v.Limit = ov.Limit
		}
		c.Views[name] = v
	}
}

// LoadStandingsFile parses a YAML standings file.
//
//	season: 2024
//	views:
//	  constructor_standings: {limit: 10}
//	  driver_standings: {limit: 22, season: 2023}
//	  top_drivers_by_wins: {limit: 10}
func LoadStandingsFile(path string) (StandingsConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		return StandingsConfig{}, fmt.Errorf("read standings config: %w", err)
	}
	var sc StandingsConfig
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return StandingsConfig{}, fmt.Errorf("parse standings config %s: %w", path, err)
	}
	return sc, nil
}

// loadStandingsFromEnv layers defaults, the optional STANDINGS_CONFIG file,
// and the individual environment overrides, in that order.
func loadStandingsFromEnv() (StandingsConfig, error) {
	sc := DefaultStandings()

	if path := os.Getenv("STANDINGS_CONFIG"); path != "" {
		fileCfg, err := LoadStandingsFile(path)
		if err != nil {
			return StandingsConfig{}, err
		}
		sc.merge(fileCfg)
	}

	season, ok, err := parseIntEnv("STANDINGS_SEASON")
	if err != nil {
		return StandingsConfig{}, err
	}
	if ok {
		sc.Season = season
	}
	for view, key := range map[string]string{
		ConstructorStandingsView: "CONSTRUCTOR_STANDINGS_LIMIT",
		DriverStandingsView:      "DRIVER_STANDINGS_LIMIT",
		TopDriversByWinsView:     "TOP_DRIVERS_BY_WINS_LIMIT",
	} {
		limit, ok, err := parseIntEnv(key)
		if err != nil {
			return StandingsConfig{}, err
		}
		if ok {
			v := sc.Views[view]
			v.Limit = limit
			sc.Views[view] = v
		}
	}

	if err := sc.Validate(); err != nil {
		return StandingsConfig{}, err
	}
	return sc, nil
}
