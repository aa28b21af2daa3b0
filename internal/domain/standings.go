package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Label is one descriptive column of a standings row.
type Label struct {
	Name  string
	Value string
}

// PointsMetric is the ranking column of the season standings views.
const PointsMetric = "total_points"

// StandingsRow is one ranked entry of a standings view. Value is the
// ranking column, named by Metric (PointsMetric when empty).
type StandingsRow struct {
	ID     int64
	Labels []Label
	Metric string
	Value  float64
}

// MetricName returns the JSON key of the ranking column.
func (r StandingsRow) MetricName() string {
	if r.Metric == "" {
		return PointsMetric
	}
	return r.Metric
}

// MarshalJSON renders the row as {"id":..., <labels in order>, <metric>:...}.
func (r StandingsRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"id":`)
	fmt.Fprintf(&buf, "%d", r.ID)
	for _, l := range r.Labels {
		key, err := json.Marshal(l.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(l.Value)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	key, err := json.Marshal(r.MetricName())
	if err != nil {
		return nil, err
	}
	val, err := json.Marshal(r.Value)
	if err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(val)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Label returns the value of the named label.
func (r StandingsRow) Label(name string) string {
	for _, l := range r.Labels {
		if l.Name == name {
			return l.Value
		}
	}
	return ""
}

// StandingsQuery parameterises one standings view execution.
type StandingsQuery struct {
	Season int
	Limit  int
}
