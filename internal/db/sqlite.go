// Package db opens the racing store and bootstraps its schema.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PoolMode selects how an SQLite pool is configured.
type PoolMode string

// SQLite pool modes.
const (
	// ModeWrite is a single connection whose transactions take the write
	// lock on BEGIN, so identity allocation is serialized.
	ModeWrite PoolMode = "write"
	ModeRead  PoolMode = "read"
)

const (
	defaultReadConns   = 4
	defaultBusyTimeout = 5 * time.Second
	openPingTimeout    = 5 * time.Second
)

// SQLiteOptions tunes the SQLite pools. Zero values select the defaults.
type SQLiteOptions struct {
	ReadConns   int           // read pool size (default 4)
	BusyTimeout time.Duration // how long a statement waits on a locked file (default 5s)
}

func (o SQLiteOptions) withDefaults() SQLiteOptions {
	if o.ReadConns <= 0 {
		o.ReadConns = defaultReadConns
	}
	if o.BusyTimeout <= 0 {
		o.BusyTimeout = defaultBusyTimeout
	}
	return o
}

// OpenSQLitePair opens the write pool and the read pool for the same
// SQLite file.
func OpenSQLitePair(path string, opts SQLiteOptions) (writeDB, readDB *sql.DB, err error) {
	opts = opts.withDefaults()

	writeDB, err = openSQLitePool(path, ModeWrite, opts)
	if err != nil {
		return nil, nil, err
	}
	readDB, err = openSQLitePool(path, ModeRead, opts)
	if err != nil {
		_ = writeDB.Close()
		return nil, nil, err
	}
	return writeDB, readDB, nil
}

func openSQLitePool(path string, mode PoolMode, opts SQLiteOptions) (*sql.DB, error) {
	var conns int
	switch mode {
	case ModeWrite:
		conns = 1
	case ModeRead:
		conns = opts.ReadConns
	default:
		return nil, fmt.Errorf("invalid SQLite pool mode %q", mode)
	}

	db, err := sql.Open("sqlite3", sqliteDSN(path, mode, opts.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s pool: %w", mode, err)
	}
	db.SetMaxOpenConns(conns)
	db.SetMaxIdleConns(conns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), openPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s pool: %w", mode, err)
	}
	return db, nil
}

// sqliteDSN appends the connection parameters to path. Parameters already
// present on path win over the defaults.
func sqliteDSN(path string, mode PoolMode, busy time.Duration) string {
	base, rawQuery, _ := strings.Cut(path, "?")
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		params = url.Values{}
	}
	setDefault := func(k, v string) {
		if !params.Has(k) {
			params.Set(k, v)
		}
	}
	setDefault("_journal_mode", "WAL")
	setDefault("_synchronous", "NORMAL")
	setDefault("_busy_timeout", strconv.FormatInt(busy.Milliseconds(), 10))
	setDefault("_foreign_keys", "on")
	if mode == ModeWrite {
		setDefault("_txlock", "immediate")
	}
	return base + "?" + params.Encode()
}
