package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// OpenDuckDB opens a DuckDB database file. An empty path opens an in-memory
// database. The caller must have registered the duckdb driver.
func OpenDuckDB(path string) (*sql.DB, error) {
	db, err := sql.Open(DriverDuckDB, path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	return db, nil
}
