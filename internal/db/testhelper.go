package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenTestSQLite opens a write/read pool pair in t.TempDir(), creates the
// racing tables on the write pool, and registers cleanup.
func OpenTestSQLite(t *testing.T) (writeDB, readDB *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "racing.sqlite")

	writeDB, readDB, err := OpenSQLitePair(path, SQLiteOptions{})
	if err != nil {
		t.Fatalf("open test sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	})

	if err := RunMigrations(writeDB); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return writeDB, readDB
}

// OpenTestPools is OpenTestSQLite wrapped as Pools.
func OpenTestPools(t *testing.T) *Pools {
	t.Helper()
	w, r := OpenTestSQLite(t)
	return &Pools{Driver: DriverSQLite, Write: w, Read: r}
}

// OpenTestDuckDB opens an in-memory DuckDB store as Pools. The caller must
// have registered the duckdb driver.
func OpenTestDuckDB(t *testing.T) *Pools {
	t.Helper()
	d, err := OpenDuckDB("")
	if err != nil {
		t.Fatalf("open test duckdb: %v", err)
	}
	d.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = d.Close() })
	return &Pools{Driver: DriverDuckDB, Write: d, Read: d}
}
