package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"racing-api/internal/domain"
)

func TestHTTPStatusFromDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"schema not found", domain.ErrSchemaNotFound("pit_stops"), http.StatusNotFound},
		{"not found", domain.ErrNotFound("drivers 1 not found"), http.StatusNotFound},
		{"validation", domain.ErrValidation("bad"), http.StatusBadRequest},
		{"conflict", domain.ErrConflict("dup"), http.StatusConflict},
		{"store unavailable", domain.ErrStoreUnavailable("list", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"wrapped", fmt.Errorf("describe drivers: %w", domain.ErrSchemaNotFound("drivers")), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httpStatusFromDomainError(tt.err))
		})
	}
}

func TestWriteError_HidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/drivers", nil)

	writeError(rec, req, discardLogger(), errors.New("near \"SELEC\": syntax error"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":500,"message":"Internal Server Error"}`, rec.Body.String())
}

func TestListOptionsFromQuery(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantRange domain.RangeRequest
		wantSort  *domain.SortRequest
		wantErr   bool
	}{
		{name: "none"},
		{
			name:      "range",
			query:     url.Values{"range": {"[0,24]"}},
			wantRange: domain.RangeRequest{Start: 0, End: 24, Set: true},
		},
		{
			name:     "sort desc",
			query:    url.Values{"sort": {`["surname","desc"]`}},
			wantSort: &domain.SortRequest{Field: "surname", Desc: true},
		},
		{name: "range not json", query: url.Values{"range": {"0-24"}}, wantErr: true},
		{name: "range one bound", query: url.Values{"range": {"[3]"}}, wantErr: true},
		{name: "negative start", query: url.Values{"range": {"[-1,4]"}}, wantErr: true},
		{name: "sort missing order", query: url.Values{"sort": {`["surname"]`}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/drivers?"+tt.query.Encode(), nil)
			opts, err := listOptionsFromQuery(req)
			if tt.wantErr {
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRange, opts.Range)
			assert.Equal(t, tt.wantSort, opts.Sort)
		})
	}
}
