package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"racing-api/internal/config"
	"racing-api/internal/middleware"
)

func driverPayload(ref, code, forename, surname string) map[string]any {
	return map[string]any{
		"driver_ref": ref, "number": "44", "code": code, "forename": forename,
		"surname": surname, "dob": "1985-01-07", "nationality": "British", "url": nil,
	}
}

func TestRecords_EmptyList(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())

	resp, body := srv.do(t, http.MethodGet, "/drivers", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "drivers 0-0/0", resp.Header.Get("Content-Range"))
	assert.Equal(t, "Content-Range", resp.Header.Get("Access-Control-Expose-Headers"))
	assert.JSONEq(t, `[]`, string(body))
}

func TestRecords_CreateThenGet(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())

	payload := driverPayload("hamilton", "HAM", "Lewis", "Hamilton")
	payload["id"] = 999
	resp, body := srv.do(t, http.MethodPost, "/drivers", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decodeJSON[map[string]any](t, body)
	assert.InDelta(t, 1.0, created["id"], 0.001, "identity is assigned by the store")
	assert.Equal(t, "Hamilton", created["surname"])

	resp, body = srv.do(t, http.MethodGet, "/drivers/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Content-Range"))
	assert.Equal(t, created, decodeJSON[map[string]any](t, body))

	resp, _ = srv.do(t, http.MethodGet, "/drivers", nil)
	assert.Equal(t, "drivers 0-0/1", resp.Header.Get("Content-Range"))
}

func TestRecords_CreateIgnoresPayloadIdentity(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())

	for i, id := range []any{"not-a-number", true, map[string]any{"x": 1}, nil} {
		payload := driverPayload(fmt.Sprintf("ref%d", i), "", "Max", "Verstappen")
		payload["id"] = id
		resp, body := srv.do(t, http.MethodPost, "/drivers", payload)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
		assert.InDelta(t, float64(i+1), decodeJSON[map[string]any](t, body)["id"], 0.001)
	}
}

func TestRecords_FieldOrderFollowsColumns(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())
	srv.exec(t, `INSERT INTO constructors (id, constructor_ref, name, nationality) VALUES (5, 'ferrari', 'Ferrari', 'Italian')`)

	_, body := srv.do(t, http.MethodGet, "/constructors/5", nil)
	assert.JSONEq(t, `{"id":5,"constructor_ref":"ferrari","name":"Ferrari","nationality":"Italian","url":null}`, string(body))
	assert.Regexp(t, `^\{"id":5,"constructor_ref":"ferrari","name":"Ferrari"`, string(body))
}

func TestRecords_ValidationErrors(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())

	tests := []struct {
		name    string
		method  string
		path    string
		body    any
		wantMsg string
	}{
		{"missing required", http.MethodPost, "/drivers", map[string]any{"driver_ref": "x", "forename": "A"}, `"surname"`},
		{"wrong type", http.MethodPost, "/races", map[string]any{"year": "twenty", "round": 1, "name": "GP"}, `"year"`},
		{"unknown field", http.MethodPost, "/constructors", map[string]any{"constructor_ref": "x", "name": "X", "colour": "red"}, "colour"},
		{"not an object", http.MethodPost, "/constructors", `[1,2]`, "JSON object"},
		{"empty body", http.MethodPost, "/constructors", ``, "JSON object"},
		{"bad id", http.MethodGet, "/drivers/abc", nil, "invalid id"},
		{"bad range", http.MethodGet, "/drivers?range=" + url.QueryEscape("[5,1]"), nil, "invalid range"},
		{"bad sort field", http.MethodGet, "/drivers?sort=" + url.QueryEscape(`["shoe_size","ASC"]`), nil, "shoe_size"},
		{"bad sort order", http.MethodGet, "/drivers?sort=" + url.QueryEscape(`["surname","UP"]`), nil, "ASC or DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := srv.do(t, tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
			e := decodeJSON[errorBody](t, body)
			assert.Equal(t, http.StatusBadRequest, e.Code)
			assert.Contains(t, e.Message, tt.wantMsg)
		})
	}
}

func TestRecords_GetMissing(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())

	resp, body := srv.do(t, http.MethodGet, "/drivers/42", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, decodeJSON[errorBody](t, body).Code)
}

func TestRecords_UpdateIsFullReplace(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())
	_, _ = srv.do(t, http.MethodPost, "/drivers", driverPayload("hamilton", "HAM", "Lewis", "Hamilton"))

	update := map[string]any{"driver_ref": "hamilton", "forename": "Lewis", "surname": "Hamilton", "code": "LH"}
	resp, body := srv.do(t, http.MethodPut, "/drivers/1", update)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	_, body = srv.do(t, http.MethodGet, "/drivers/1", nil)
	got := decodeJSON[map[string]any](t, body)
	assert.Equal(t, "LH", got["code"])
	assert.Nil(t, got["number"], "omitted nullable fields are cleared")
	assert.Nil(t, got["nationality"])
}

func TestRecords_UpdateMissingDoesNotMutate(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())
	_, _ = srv.do(t, http.MethodPost, "/drivers", driverPayload("hamilton", "HAM", "Lewis", "Hamilton"))
	_, before := srv.do(t, http.MethodGet, "/drivers", nil)

	resp, _ := srv.do(t, http.MethodPut, "/drivers/77", driverPayload("ghost", "GHO", "No", "One"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, after := srv.do(t, http.MethodGet, "/drivers", nil)
	assert.JSONEq(t, string(before), string(after))
	assert.Equal(t, "drivers 0-0/1", resp.Header.Get("Content-Range"))
}

func TestRecords_DeleteIsIdempotent(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())
	_, _ = srv.do(t, http.MethodPost, "/constructors", map[string]any{"constructor_ref": "haas", "name": "Haas"})

	for range 2 {
		resp, body := srv.do(t, http.MethodDelete, "/constructors/1", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"status":"deleted"}`, string(body))
	}

	resp, _ := srv.do(t, http.MethodGet, "/constructors/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecords_ForeignKeyConflict(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())

	resp, body := srv.do(t, http.MethodPost, "/constructor_results",
		map[string]any{"race_id": 1, "constructor_id": 1, "points": 10})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(body))
}

func TestRecords_RangeAndSort(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())
	for i, name := range []string{"Williams", "Alpine", "Sauber", "Haas", "Mercedes"} {
		srv.exec(t, `INSERT INTO constructors (id, constructor_ref, name) VALUES (?, ?, ?)`, i+1, name, name)
	}

	q := "?range=" + url.QueryEscape("[1,2]") + "&sort=" + url.QueryEscape(`["name","ASC"]`)
	resp, body := srv.do(t, http.MethodGet, "/constructors"+q, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "constructors 1-2/5", resp.Header.Get("Content-Range"))

	rows := decodeJSON[[]map[string]any](t, body)
	require.Len(t, rows, 2)
	assert.Equal(t, "Haas", rows[0]["name"])
	assert.Equal(t, "Mercedes", rows[1]["name"])
}

func TestRecords_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())

	const n = 16
	ids := make(chan float64, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, body := srv.do(t, http.MethodPost, "/constructors",
				map[string]any{"constructor_ref": fmt.Sprintf("team_%d", i), "name": fmt.Sprintf("Team %d", i)})
			if !assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body)) {
				return
			}
			var rec map[string]any
			if assert.NoError(t, json.Unmarshal(body, &rec)) {
				ids <- rec["id"].(float64)
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[float64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %v", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestRouter_UnknownTable(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())

	resp, body := srv.do(t, http.MethodGet, "/pit_stops", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decodeJSON[errorBody](t, body).Message, `"pit_stops"`)
}

func TestRouter_HealthAndOpenAPI(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())

	resp, body := srv.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, body = srv.do(t, http.MethodGet, "/openapi.json", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decodeJSON[map[string]any](t, body)
	paths := doc["paths"].(map[string]any)
	assert.Contains(t, paths, "/drivers")
	assert.Contains(t, paths, "/drivers/{id}")
	assert.Contains(t, paths, "/constructors/my_constructor_standings")

	loader := openapi3.NewLoader()
	loaded, err := loader.LoadFromData(body)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate(t.Context()))
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	srv := setupTestServer(t, config.DefaultStandings())

	resp, _ := srv.do(t, http.MethodGet, "/healthz", nil)
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/drivers/999", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.HeaderRequestID, "pit-wall-42")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "pit-wall-42", resp.Header.Get(middleware.HeaderRequestID))
}
