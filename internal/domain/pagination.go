package domain

import "fmt"

// PageMetadata describes the slice of a collection returned to the client.
// It is sent as a Content-Range header, never in the body.
type PageMetadata struct {
	Resource string
	Start    int
	End      int
	Total    int64
}

// PageForCount returns metadata for a complete, unsliced result of count rows.
func PageForCount(resource string, count int) PageMetadata {
	return PageForSlice(resource, 0, count, int64(count))
}

// PageForSlice returns metadata for count rows starting at offset, out of
// total rows overall. End is clamped to start when the slice is empty.
func PageForSlice(resource string, offset, count int, total int64) PageMetadata {
	end := offset + count - 1
	if end < offset {
		end = offset
	}
	return PageMetadata{Resource: resource, Start: offset, End: end, Total: total}
}

// ContentRange renders the metadata in Content-Range header form.
func (p PageMetadata) ContentRange() string {
	return fmt.Sprintf("%s %d-%d/%d", p.Resource, p.Start, p.End, p.Total)
}

// RangeRequest selects a slice of a collection. A zero value means "all rows".
type RangeRequest struct {
	Start int
	End   int // inclusive
	Set   bool
}

// Limit returns the number of rows the range covers.
func (r RangeRequest) Limit() int {
	if !r.Set {
		return 0
	}
	return r.End - r.Start + 1
}

// SortRequest orders a collection by one field.
type SortRequest struct {
	Field string
	Desc  bool
}

// ListOptions carries the optional list parameters.
type ListOptions struct {
	Range RangeRequest
	Sort  *SortRequest
}
