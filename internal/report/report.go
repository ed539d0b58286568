// Package report turns aggregated statistics into an immutable, serializable
// result that renderers, the hub and the HTTP API can share.
package report

import (
	"time"

	"github.com/atikulmunna/logsift/internal/aggregator"
	"github.com/atikulmunna/logsift/internal/model"
	"github.com/google/uuid"
)

// Row is one group: its values in the report's dimension order and its count.
// A dimension the line could not provide a value for is nil, so it encodes as
// null while an extracted empty value stays "".
type Row struct {
	Values []*string `json:"values" yaml:"values"`
	Count  string   `json:"count" yaml:"count"`
}

// Report is the outcome of one parse run. Counts are decimal strings since
// they are unbounded.
type Report struct {
	RunID      string        `json:"run_id" yaml:"run_id"`
	Input      string        `json:"input" yaml:"input"`
	Started    time.Time     `json:"started" yaml:"started"`
	Duration   time.Duration `json:"duration_ns" yaml:"duration"`
	Dimensions []string      `json:"dimensions" yaml:"dimensions"`
	Rows       []Row         `json:"rows" yaml:"rows"`
	Total      string        `json:"total" yaml:"total"`
	Grouped    string        `json:"grouped" yaml:"grouped"`
}

// Run describes where and when a snapshot was produced.
type Run struct {
	Input    string
	Started  time.Time
	Duration time.Duration
}

// New builds a Report from snap, laying rows out along dims.
func New(snap aggregator.Snapshot, dims model.DimensionSet, run Run) Report {
	order := dims.Slice()

	r := Report{
		RunID:      uuid.New().String(),
		Input:      run.Input,
		Started:    run.Started,
		Duration:   run.Duration,
		Dimensions: make([]string, len(order)),
		Total:      snap.TotalOrZero().String(),
		Grouped:    snap.Grouped().String(),
	}
	for i, d := range order {
		r.Dimensions[i] = d.String()
	}

	buckets := snap.Buckets()
	r.Rows = make([]Row, 0, len(buckets))
	for _, b := range buckets {
		values := make([]*string, len(order))
		for i, d := range order {
			if v, ok := b.Key.Value(d); ok {
				values[i] = &v
			}
		}
		r.Rows = append(r.Rows, Row{Values: values, Count: b.Count.String()})
	}
	return r
}

// Cells returns the row's values as strings, with missing in place of
// dimensions that have no value.
func (r Row) Cells(missing string) []string {
	cells := make([]string, len(r.Values))
	for i, v := range r.Values {
		if v == nil {
			cells[i] = missing
			continue
		}
		cells[i] = *v
	}
	return cells
}

// Empty reports whether no line matched.
func (r Report) Empty() bool {
	return r.Total == "" || r.Total == "0"
}
