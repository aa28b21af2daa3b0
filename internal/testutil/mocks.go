// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"sort"
	"sync"

	"racing-api/internal/domain"
)

// === Schema Introspector Mock ===

// MockIntrospector implements domain.SchemaIntrospector over an in-memory
// set of tables. Describe calls are recorded.
type MockIntrospector struct {
	Tables     map[string]domain.TableSchema
	DescribeFn func(ctx context.Context, table string) (*domain.TableSchema, error)

	mu    sync.Mutex
	calls []string
}

// Describe implements the interface method for testing.
func (m *MockIntrospector) Describe(ctx context.Context, table string) (*domain.TableSchema, error) {
	m.mu.Lock()
	m.calls = append(m.calls, table)
	m.mu.Unlock()

	if m.DescribeFn != nil {
		return m.DescribeFn(ctx, table)
	}
	ts, ok := m.Tables[table]
	if !ok {
		return nil, domain.ErrSchemaNotFound(table)
	}
	return &ts, nil
}

// ListTables implements the interface method for testing.
func (m *MockIntrospector) ListTables(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(m.Tables))
	for name := range m.Tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Calls returns the tables passed to Describe, in call order.
func (m *MockIntrospector) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// === Standings Source Mock ===

// MockStandingsSource implements domain.StandingsSource for testing.
type MockStandingsSource struct {
	ConstructorFn func(ctx context.Context, q domain.StandingsQuery) ([]domain.StandingsRow, error)
	DriverFn      func(ctx context.Context, q domain.StandingsQuery) ([]domain.StandingsRow, error)
	WinsFn        func(ctx context.Context, q domain.StandingsQuery) ([]domain.StandingsRow, error)
}

// ConstructorStandings implements the interface method for testing.
func (m *MockStandingsSource) ConstructorStandings(ctx context.Context, q domain.StandingsQuery) ([]domain.StandingsRow, error) {
	if m.ConstructorFn != nil {
		return m.ConstructorFn(ctx, q)
	}
	panic("unexpected call to MockStandingsSource.ConstructorStandings")
}

// DriverStandings implements the interface method for testing.
func (m *MockStandingsSource) DriverStandings(ctx context.Context, q domain.StandingsQuery) ([]domain.StandingsRow, error) {
	if m.DriverFn != nil {
		return m.DriverFn(ctx, q)
	}
	panic("unexpected call to MockStandingsSource.DriverStandings")
}

// TopDriversByWins implements the interface method for testing.
func (m *MockStandingsSource) TopDriversByWins(ctx context.Context, q domain.StandingsQuery) ([]domain.StandingsRow, error) {
	if m.WinsFn != nil {
		return m.WinsFn(ctx, q)
	}
	panic("unexpected call to MockStandingsSource.TopDriversByWins")
}
