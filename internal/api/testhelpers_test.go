package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"racing-api/internal/config"
	internaldb "racing-api/internal/db"
	"racing-api/internal/db/repository"
	"racing-api/internal/recordschema"
	"racing-api/internal/service/records"
	"racing-api/internal/service/standings"
)

type testServer struct {
	*httptest.Server
	writeDB *sql.DB
}

// setupTestServer wires the full router over a migrated SQLite store.
func setupTestServer(t *testing.T, cfg config.StandingsConfig) *testServer {
	t.Helper()

	pools := internaldb.OpenTestPools(t)
	registry, err := recordschema.LoadRegistry(context.Background(),
		repository.NewSchemaRepo(pools.Read, pools.Driver), config.DefaultTables)
	require.NoError(t, err)

	handler := NewRouter(t.Context(), RouterConfig{
		Registry:           registry,
		Records:            records.NewService(repository.NewRecordRepo(pools.Write, pools.Read), 5*time.Second, nil),
		Standings:          standings.NewService(repository.NewStandingsRepo(pools.Read), cfg, 5*time.Second, nil),
		Health:             func(ctx context.Context) error { return pools.Ping(ctx, time.Second) },
		CORSAllowedOrigins: []string{"*"},
		Version:            "test",
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, writeDB: pools.Write}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, rdr)
	require.NoError(t, err)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeJSON[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func (s *testServer) exec(t *testing.T, query string, args ...any) {
	t.Helper()
	_, err := s.writeDB.Exec(query, args...)
	require.NoError(t, err)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
