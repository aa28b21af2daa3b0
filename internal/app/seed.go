package app

import (
	"context"
	"fmt"

	"racing-api/internal/domain"
	"racing-api/internal/recordschema"
	"racing-api/internal/service/records"
)

type demoDriver struct {
	ref, code, forename, surname, nationality string
	constructor                               int
}

var (
	demoConstructors = []struct{ ref, name, nationality string }{
		{"red_bull", "Red Bull", "Austrian"},
		{"ferrari", "Ferrari", "Italian"},
		{"mclaren", "McLaren", "British"},
	}
	demoDrivers = []demoDriver{
		{"max_verstappen", "VER", "Max", "Verstappen", "Dutch", 0},
		{"leclerc", "LEC", "Charles", "Leclerc", "Monegasque", 1},
		{"norris", "NOR", "Lando", "Norris", "British", 2},
	}
	demoRaces = []struct {
		round  int
		name   string
		date   string
		points []float64 // per demo driver, in demoDrivers order
	}{
		{1, "Bahrain Grand Prix", "2024-03-02", []float64{26, 12, 6}},
		{2, "Saudi Arabian Grand Prix", "2024-03-09", []float64{25, 18, 10}},
	}
)

// seedDemo populates an empty store with a two-race season through the
// record service. It is a no-op when drivers already has rows.
func seedDemo(ctx context.Context, registry *recordschema.Registry, svc *records.Service) error {
	schemas := map[string]*recordschema.RecordSchema{}
	for _, table := range []string{"drivers", "constructors", "races", "results", "constructor_results"} {
		s, err := registry.Lookup(table)
		if err != nil {
			return fmt.Errorf("seed requires %s: %w", table, err)
		}
		schemas[table] = s
	}

	existing, _, err := svc.List(ctx, schemas["drivers"], domain.ListOptions{Range: domain.RangeRequest{Start: 0, End: 0, Set: true}})
	if err != nil {
		return fmt.Errorf("check drivers: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	create := func(table string, payload map[string]any) (any, error) {
		rec, err := svc.Create(ctx, schemas[table], payload)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", table, err)
		}
		return rec[schemas[table].Identity().Name], nil
	}

	constructorIDs := make([]any, len(demoConstructors))
	for i, c := range demoConstructors {
		id, err := create("constructors", map[string]any{
			"constructor_ref": c.ref, "name": c.name, "nationality": c.nationality,
		})
		if err != nil {
			return err
		}
		constructorIDs[i] = id
	}

	driverIDs := make([]any, len(demoDrivers))
	for i, d := range demoDrivers {
		id, err := create("drivers", map[string]any{
			"driver_ref": d.ref, "code": d.code, "forename": d.forename,
			"surname": d.surname, "nationality": d.nationality,
		})
		if err != nil {
			return err
		}
		driverIDs[i] = id
	}

	for _, race := range demoRaces {
		raceID, err := create("races", map[string]any{
			"year": 2024, "round": race.round, "name": race.name, "date": race.date,
		})
		if err != nil {
			return err
		}
		constructorPoints := make([]float64, len(demoConstructors))
		for i, d := range demoDrivers {
			if _, err := create("results", map[string]any{
				"race_id": raceID, "driver_id": driverIDs[i],
				"constructor_id": constructorIDs[d.constructor], "points": race.points[i],
			}); err != nil {
				return err
			}
			constructorPoints[d.constructor] += race.points[i]
		}
		for i, pts := range constructorPoints {
			if _, err := create("constructor_results", map[string]any{
				"race_id": raceID, "constructor_id": constructorIDs[i], "points": pts,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
