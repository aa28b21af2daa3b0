package repository

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	internaldb "racing-api/internal/db"
	"racing-api/internal/recordschema"
)

func setupStore(t *testing.T) (writeDB, readDB *sql.DB) {
	t.Helper()
	return internaldb.OpenTestSQLite(t)
}

func schemaFor(t *testing.T, db *sql.DB, table string) *recordschema.RecordSchema {
	t.Helper()
	ts, err := NewSchemaRepo(db, "sqlite3").Describe(context.Background(), table)
	require.NoError(t, err)
	s, err := recordschema.Build(*ts)
	require.NoError(t, err)
	return s
}

func seedRace(t *testing.T, db *sql.DB, id int64, year int) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO races (id, year, round, name) VALUES (?, ?, 1, 'Grand Prix')`, id, year)
	require.NoError(t, err)
}

func seedDriver(t *testing.T, db *sql.DB, id int64, forename, surname, code string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO drivers (id, driver_ref, code, forename, surname) VALUES (?, ?, ?, ?, ?)`,
		id, surname, code, forename, surname)
	require.NoError(t, err)
}

func seedConstructor(t *testing.T, db *sql.DB, id int64, name string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO constructors (id, constructor_ref, name) VALUES (?, ?, ?)`, id, name, name)
	require.NoError(t, err)
}

func seedResult(t *testing.T, db *sql.DB, raceID, driverID, constructorID int64, points float64) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO results (race_id, driver_id, constructor_id, points) VALUES (?, ?, ?, ?)`,
		raceID, driverID, constructorID, points)
	require.NoError(t, err)
}

func seedConstructorResult(t *testing.T, db *sql.DB, raceID, constructorID int64, points float64) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO constructor_results (race_id, constructor_id, points) VALUES (?, ?, ?)`,
		raceID, constructorID, points)
	require.NoError(t, err)
}
