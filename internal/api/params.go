package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"racing-api/internal/domain"
)

const maxBodyBytes = 1 << 20

// listOptionsFromQuery reads the optional react-admin list parameters
// range=[start,end] and sort=["field","ASC|DESC"].
func listOptionsFromQuery(r *http.Request) (domain.ListOptions, error) {
	var opts domain.ListOptions
	q := r.URL.Query()

	if raw := q.Get("range"); raw != "" {
		var bounds []int
		if err := json.Unmarshal([]byte(raw), &bounds); err != nil || len(bounds) != 2 {
			return opts, domain.ErrValidation("range must be [start,end], got %s", raw)
		}
		if bounds[0] < 0 || bounds[1] < bounds[0] {
			return opts, domain.ErrValidation("invalid range [%d,%d]", bounds[0], bounds[1])
		}
		opts.Range = domain.RangeRequest{Start: bounds[0], End: bounds[1], Set: true}
	}

	if raw := q.Get("sort"); raw != "" {
		var pair []string
		if err := json.Unmarshal([]byte(raw), &pair); err != nil || len(pair) != 2 || pair[0] == "" {
			return opts, domain.ErrValidation(`sort must be ["field","ASC|DESC"], got %s`, raw)
		}
		switch strings.ToUpper(pair[1]) {
		case "ASC":
			opts.Sort = &domain.SortRequest{Field: pair[0]}
		case "DESC":
			opts.Sort = &domain.SortRequest{Field: pair[0], Desc: true}
		default:
			return opts, domain.ErrValidation("sort order must be ASC or DESC, got %q", pair[1])
		}
	}
	return opts, nil
}

// decodePayload reads a JSON object body. Numbers are kept as json.Number
// so integer fields do not pass through float64.
func decodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.ErrValidation("request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, domain.ErrValidation("request body must be a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil || payload == nil {
		return nil, domain.ErrValidation("request body must be a JSON object")
	}
	if dec.More() {
		return nil, domain.ErrValidation("request body must contain a single JSON object")
	}
	return payload, nil
}

func setContentRange(w http.ResponseWriter, page domain.PageMetadata) {
	w.Header().Set("Content-Range", page.ContentRange())
	w.Header().Set("Access-Control-Expose-Headers", "Content-Range")
}
