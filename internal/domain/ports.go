package domain

import "context"

// SchemaIntrospector reads table shapes from the store.
// Implemented by repository.SchemaRepo.
type SchemaIntrospector interface {
	Describe(ctx context.Context, table string) (*TableSchema, error)
	ListTables(ctx context.Context) ([]string, error)
}

// StandingsSource executes the fixed aggregation joins.
// Implemented by repository.StandingsRepo.
type StandingsSource interface {
	ConstructorStandings(ctx context.Context, q StandingsQuery) ([]StandingsRow, error)
	DriverStandings(ctx context.Context, q StandingsQuery) ([]StandingsRow, error)
	TopDriversByWins(ctx context.Context, q StandingsQuery) ([]StandingsRow, error)
}
