package db

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		name string
		path string
		mode PoolMode
		busy time.Duration
		want map[string]string
		none []string
	}{
		{
			name: "write pool",
			path: "/tmp/racing.sqlite",
			mode: ModeWrite,
			busy: 5 * time.Second,
			want: map[string]string{"_journal_mode": "WAL", "_busy_timeout": "5000", "_foreign_keys": "on", "_txlock": "immediate"},
		},
		{
			name: "read pool has no txlock",
			path: "/tmp/racing.sqlite",
			mode: ModeRead,
			busy: 250 * time.Millisecond,
			want: map[string]string{"_busy_timeout": "250", "_synchronous": "NORMAL"},
			none: []string{"_txlock"},
		},
		{
			name: "path parameters win",
			path: "file:racing.sqlite?_busy_timeout=100&cache=shared",
			mode: ModeWrite,
			busy: 5 * time.Second,
			want: map[string]string{"_busy_timeout": "100", "cache": "shared", "_txlock": "immediate"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := sqliteDSN(tt.path, tt.mode, tt.busy)

			base, rawQuery, ok := strings.Cut(dsn, "?")
			require.True(t, ok)
			wantBase, _, _ := strings.Cut(tt.path, "?")
			assert.Equal(t, wantBase, base)

			params, err := url.ParseQuery(rawQuery)
			require.NoError(t, err)
			for k, v := range tt.want {
				assert.Equal(t, v, params.Get(k), k)
			}
			for _, k := range tt.none {
				assert.False(t, params.Has(k), k)
			}
		})
	}
}

func TestSQLiteOptions_Defaults(t *testing.T) {
	o := SQLiteOptions{}.withDefaults()
	assert.Equal(t, 4, o.ReadConns)
	assert.Equal(t, 5*time.Second, o.BusyTimeout)

	o = SQLiteOptions{ReadConns: 2, BusyTimeout: time.Second}.withDefaults()
	assert.Equal(t, 2, o.ReadConns)
	assert.Equal(t, time.Second, o.BusyTimeout)
}

func TestOpenSQLitePool_InvalidMode(t *testing.T) {
	_, err := openSQLitePool(filepath.Join(t.TempDir(), "racing.db"), PoolMode("append"), SQLiteOptions{}.withDefaults())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SQLite pool mode")
}

func TestOpenSQLitePair_PoolSizes(t *testing.T) {
	writeDB, readDB, err := OpenSQLitePair(filepath.Join(t.TempDir(), "racing.db"),
		SQLiteOptions{ReadConns: 3, BusyTimeout: 1500 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	})

	assert.Equal(t, 1, writeDB.Stats().MaxOpenConnections)
	assert.Equal(t, 3, readDB.Stats().MaxOpenConnections)

	var journalMode string
	require.NoError(t, readDB.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", strings.ToLower(journalMode))

	var busy int
	require.NoError(t, writeDB.QueryRow("PRAGMA busy_timeout").Scan(&busy))
	assert.Equal(t, 1500, busy)
}

func TestOpenSQLitePair_InvalidPath(t *testing.T) {
	_, _, err := OpenSQLitePair("/nonexistent/dir/racing.db", SQLiteOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping sqlite write pool")
}

func TestOpen_Drivers(t *testing.T) {
	p, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "racing.db"), SQLiteOptions{ReadConns: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	assert.Equal(t, DriverSQLite, p.Driver)
	assert.NotSame(t, p.Write, p.Read)
	require.NoError(t, p.Ping(context.Background(), time.Second))

	_, err = Open("postgres", "x", SQLiteOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestRunMigrations_CreatesRacingTables(t *testing.T) {
	writeDB, readDB := OpenTestSQLite(t)

	for _, table := range []string{"drivers", "constructors", "races", "results", "constructor_results"} {
		var name string
		err := readDB.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}

	v, err := MigrationVersion(writeDB)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	// Idempotent.
	require.NoError(t, RunMigrations(writeDB))
}
