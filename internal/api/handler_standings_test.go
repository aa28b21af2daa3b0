package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"racing-api/internal/config"
)

func seedSeason(t *testing.T, srv *testServer) {
	t.Helper()
	srv.exec(t, `INSERT INTO races (id, year, round, name) VALUES (1, 2024, 1, 'Bahrain'), (2, 2024, 2, 'Jeddah'), (3, 2023, 1, 'Old')`)
	srv.exec(t, `INSERT INTO constructors (id, constructor_ref, name) VALUES (1, 'a', 'A'), (2, 'b', 'B')`)
	srv.exec(t, `INSERT INTO constructor_results (race_id, constructor_id, points) VALUES (1, 1, 18), (2, 1, 8), (1, 2, 25), (3, 2, 100)`)
	srv.exec(t, `INSERT INTO drivers (id, driver_ref, code, forename, surname) VALUES (1, 'x', 'XXX', 'Xavier', 'Ex'), (2, 'y', NULL, 'Yann', 'Why')`)
	srv.exec(t, `INSERT INTO results (race_id, driver_id, constructor_id, points) VALUES (1, 1, 1, 10), (1, 2, 2, 15), (2, 1, 1, 6)`)
}

func TestStandings_Constructors(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())
	seedSeason(t, srv)

	resp, body := srv.do(t, http.MethodGet, "/constructors/my_constructor_standings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "constructor_standings 0-1/2", resp.Header.Get("Content-Range"))
	assert.Equal(t, "Content-Range", resp.Header.Get("Access-Control-Expose-Headers"))
	assert.JSONEq(t, `[
		{"id":1,"constructor_name":"A","total_points":26},
		{"id":2,"constructor_name":"B","total_points":25}
	]`, string(body))
}

func TestStandings_Drivers(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())
	seedSeason(t, srv)

	resp, body := srv.do(t, http.MethodGet, "/drivers/my_driver_standings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "driver_standings 0-1/2", resp.Header.Get("Content-Range"))
	assert.JSONEq(t, `[
		{"id":1,"forename":"Xavier","surname":"Ex","code":"XXX","total_points":16},
		{"id":2,"forename":"Yann","surname":"Why","code":"","total_points":15}
	]`, string(body))
}

func TestStandings_CapAndEmptySeason(t *testing.T) {
	cfg := config.DefaultStandings()
	cfg.Views[config.ConstructorStandingsView] = config.ViewConfig{Limit: 1}
	cfg.Views[config.DriverStandingsView] = config.ViewConfig{Season: 1999, Limit: 22}
	srv := setupTestServer(t, cfg)
	seedSeason(t, srv)

	resp, body := srv.do(t, http.MethodGet, "/constructors/my_constructor_standings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "constructor_standings 0-0/1", resp.Header.Get("Content-Range"))
	assert.JSONEq(t, `[{"id":1,"constructor_name":"A","total_points":26}]`, string(body))

	resp, body = srv.do(t, http.MethodGet, "/drivers/my_driver_standings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "driver_standings 0-0/0", resp.Header.Get("Content-Range"))
	assert.JSONEq(t, `[]`, string(body))
}

func TestStandings_StaticPathWinsOverID(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())
	for i := 1; i <= 12; i++ {
		srv.exec(t, `INSERT INTO constructors (id, constructor_ref, name) VALUES (?, ?, ?)`, i, fmt.Sprint(i), fmt.Sprint("T", i))
	}

	resp, _ := srv.do(t, http.MethodGet, "/constructors/my_constructor_standings", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = srv.do(t, http.MethodGet, "/constructors/12", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStandings_TopDriversByWins(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())
	seedSeason(t, srv)
	srv.exec(t, `UPDATE drivers SET nationality = 'French' WHERE id = 1`)
	srv.exec(t, `INSERT INTO results (race_id, driver_id, constructor_id, position) VALUES (1, 1, 1, 1), (2, 1, 1, 1), (3, 2, 2, 1), (2, 2, 2, 4)`)

	resp, body := srv.do(t, http.MethodGet, "/dashboard/top_drivers_by_wins?range=[0,9]", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "top_drivers_by_wins 0-1/2", resp.Header.Get("Content-Range"))
	assert.JSONEq(t, `[
		{"id":1,"full_name":"Xavier Ex","nationality":"French","number_of_wins":2},
		{"id":2,"full_name":"Yann Why","nationality":"","number_of_wins":1}
	]`, string(body))
}
