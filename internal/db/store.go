package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Supported store drivers.
const (
	DriverSQLite = "sqlite3"
	DriverDuckDB = "duckdb"
)

// Pools is the pair of connection pools handed to repositories. Write is
// used for every statement that mutates rows; Read for everything else.
// With DuckDB both point at the same pool.
type Pools struct {
	Driver string
	Write  *sql.DB
	Read   *sql.DB
}

// Open opens the store at path with the given driver. opts only apply to
// SQLite.
func Open(driver, path string, opts SQLiteOptions) (*Pools, error) {
	switch driver {
	case DriverSQLite, "":
		w, r, err := OpenSQLitePair(path, opts)
		if err != nil {
			return nil, err
		}
		return &Pools{Driver: DriverSQLite, Write: w, Read: r}, nil
	case DriverDuckDB:
		d, err := OpenDuckDB(path)
		if err != nil {
			return nil, err
		}
		return &Pools{Driver: DriverDuckDB, Write: d, Read: d}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

// Ping checks that both pools answer within timeout.
func (p *Pools) Ping(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.Write.PingContext(ctx); err != nil {
		return fmt.Errorf("ping write pool: %w", err)
	}
	if p.Read != p.Write {
		if err := p.Read.PingContext(ctx); err != nil {
			return fmt.Errorf("ping read pool: %w", err)
		}
	}
	return nil
}

// Close closes both pools.
func (p *Pools) Close() error {
	if p.Read == p.Write {
		return p.Write.Close()
	}
	return errors.Join(p.Read.Close(), p.Write.Close())
}
