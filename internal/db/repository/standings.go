package repository

import (
	"context"
	"database/sql"

	"racing-api/internal/domain"
)

// Ties on the ranking column are broken by entity id so the ranking is
// stable. Label columns are coalesced so a NULL never fails the scan.
const constructorStandingsSQL = `
SELECT
    c.id AS id,
    COALESCE(c.name, '') AS constructor_name,
    COALESCE(SUM(cr.points), 0) AS total_points
FROM constructor_results cr
    JOIN races r ON cr.race_id = r.id
    JOIN constructors c ON cr.constructor_id = c.id
WHERE r.year = ?
GROUP BY c.id, c.name
ORDER BY total_points DESC, c.id ASC
LIMIT ?`

const driverStandingsSQL = `
SELECT
    d.id AS id,
    COALESCE(d.forename, '') AS forename,
    COALESCE(d.surname, '') AS surname,
    COALESCE(d.code, '') AS code,
    COALESCE(SUM(res.points), 0) AS total_points
FROM results res
    JOIN races r ON res.race_id = r.id
    JOIN drivers d ON res.driver_id = d.id
WHERE r.year = ?
GROUP BY d.id, d.forename, d.surname, d.code
ORDER BY total_points DESC, d.id ASC
LIMIT ?`

// A zero season counts wins across every season.
const topDriversByWinsSQL = `
SELECT
    d.id AS id,
    TRIM(COALESCE(d.forename, '') || ' ' || COALESCE(d.surname, '')) AS full_name,
    COALESCE(d.nationality, '') AS nationality,
    COUNT(*) AS number_of_wins
FROM results res
    JOIN races r ON res.race_id = r.id
    JOIN drivers d ON res.driver_id = d.id
WHERE res.position = 1 AND (? = 0 OR r.year = ?)
GROUP BY d.id, d.forename, d.surname, d.nationality
ORDER BY number_of_wins DESC, d.id ASC
LIMIT ?`

// WinsMetric is the ranking column of the top drivers by wins view.
const WinsMetric = "number_of_wins"

// StandingsRepo runs the fixed standings aggregations.
type StandingsRepo struct {
	db *sql.DB
}

// NewStandingsRepo creates a new StandingsRepo.
func NewStandingsRepo(db *sql.DB) *StandingsRepo {
	return &StandingsRepo{db: db}
}

// ConstructorStandings sums constructor_results points per constructor
// for the season.
func (r *StandingsRepo) ConstructorStandings(ctx context.Context, q domain.StandingsQuery) ([]domain.StandingsRow, error) {
	return r.run(ctx, "constructor standings", constructorStandingsSQL,
		[]any{q.Season, q.Limit}, domain.PointsMetric, "constructor_name")
}

// DriverStandings sums results points per driver for the season.
func (r *StandingsRepo) DriverStandings(ctx context.Context, q domain.StandingsQuery) ([]domain.StandingsRow, error) {
	return r.run(ctx, "driver standings", driverStandingsSQL,
		[]any{q.Season, q.Limit}, domain.PointsMetric, "forename", "surname", "code")
}

// TopDriversByWins counts race wins (finishing position 1) per driver.
func (r *StandingsRepo) TopDriversByWins(ctx context.Context, q domain.StandingsQuery) ([]domain.StandingsRow, error) {
	return r.run(ctx, "top drivers by wins", topDriversByWinsSQL,
		[]any{q.Season, q.Season, q.Limit}, WinsMetric, "full_name", "nationality")
}

// run executes query; its columns must be id, one column per label, then
// the metric column.
func (r *StandingsRepo) run(ctx context.Context, op, query string, args []any, metric string, labels ...string) ([]domain.StandingsRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDBError(op, err)
	}
	defer rows.Close() //nolint:errcheck

	out := []domain.StandingsRow{}
	for rows.Next() {
		var (
			row    = domain.StandingsRow{Metric: metric}
			values = make([]string, len(labels))
			dest   = make([]any, 0, len(labels)+2)
		)
		dest = append(dest, &row.ID)
		for i := range values {
			dest = append(dest, &values[i])
		}
		dest = append(dest, &row.Value)
		if err := rows.Scan(dest...); err != nil {
			return nil, mapDBError(op, err)
		}
		row.Labels = make([]domain.Label, len(labels))
		for i, name := range labels {
			row.Labels[i] = domain.Label{Name: name, Value: values[i]}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(op, err)
	}
	return out, nil
}
