package timeseries

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Frame holds an hourly (or otherwise regularly sampled) solar time series:
// one parsed timestamp column plus named float64 value columns. Missing
// values are represented by NaN, never by zero.
type Frame struct {
	TimeColumn string
	Times      []time.Time
	Columns    []string // value column names in file order
	values     map[string][]float64
}

// NewFrame creates an empty frame with the given time column name.
func NewFrame(timeColumn string) *Frame {
	return &Frame{
		TimeColumn: timeColumn,
		values:     make(map[string][]float64),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Times)
}

// HasColumn reports whether a value column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.values[name]
	return ok
}

// Column returns the backing slice for a value column, or nil if absent.
// Callers that need to keep the frame intact should copy before mutating.
func (f *Frame) Column(name string) []float64 {
	return f.values[name]
}

// SetColumn adds or replaces a value column. The slice length must match the
// number of rows.
func (f *Frame) SetColumn(name string, vals []float64) error {
	if len(vals) != len(f.Times) {
		return fmt.Errorf("column %s: length %d does not match %d rows", name, len(vals), len(f.Times))
	}
	if _, exists := f.values[name]; !exists {
		f.Columns = append(f.Columns, name)
	}
	f.values[name] = vals
	return nil
}

// Value returns the value at (row, column); NaN for an absent column.
func (f *Frame) Value(row int, column string) float64 {
	col, ok := f.values[column]
	if !ok {
		return math.NaN()
	}
	return col[row]
}

// SetValue assigns a single cell.
func (f *Frame) SetValue(row int, column string, v float64) {
	if col, ok := f.values[column]; ok {
		col[row] = v
	}
}

// MissingCount returns the number of NaN entries in a column.
func (f *Frame) MissingCount(column string) int {
	n := 0
	for _, v := range f.values[column] {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// CompleteRows returns the indices of rows where every listed column is
// non-missing. These are the only rows eligible for validation masking.
func (f *Frame) CompleteRows(columns []string) []int {
	var rows []int
	for i := range f.Times {
		complete := true
		for _, c := range columns {
			col, ok := f.values[c]
			if !ok || math.IsNaN(col[i]) {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, i)
		}
	}
	return rows
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := &Frame{
		TimeColumn: f.TimeColumn,
		Times:      append([]time.Time(nil), f.Times...),
		Columns:    append([]string(nil), f.Columns...),
		values:     make(map[string][]float64, len(f.values)),
	}
	for name, col := range f.values {
		c.values[name] = append([]float64(nil), col...)
	}
	return c
}

// Normalize sorts rows by timestamp and drops rows that repeat an earlier
// timestamp, so that timestamps are strictly increasing. It returns the
// number of duplicate rows dropped.
func (f *Frame) Normalize() int {
	idx := make([]int, len(f.Times))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return f.Times[idx[a]].Before(f.Times[idx[b]])
	})

	keep := idx[:0]
	var prev time.Time
	for i, j := range idx {
		if i > 0 && f.Times[j].Equal(prev) {
			continue
		}
		prev = f.Times[j]
		keep = append(keep, j)
	}
	dropped := len(f.Times) - len(keep)

	times := make([]time.Time, len(keep))
	for i, j := range keep {
		times[i] = f.Times[j]
	}
	for name, col := range f.values {
		reordered := make([]float64, len(keep))
		for i, j := range keep {
			reordered[i] = col[j]
		}
		f.values[name] = reordered
	}
	f.Times = times
	return dropped
}

// Hours returns the hour-of-day for every row.
func (f *Frame) Hours() []int {
	hours := make([]int, len(f.Times))
	for i, t := range f.Times {
		hours[i] = t.Hour()
	}
	return hours
}

// NumericTimes returns timestamps as Unix seconds, the abscissa used by the
// spline strategy.
func (f *Frame) NumericTimes() []float64 {
	xs := make([]float64, len(f.Times))
	for i, t := range f.Times {
		xs[i] = float64(t.Unix())
	}
	return xs
}

// timestampLayouts are tried in order when parsing a time column.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
}

// ParseTimestamp parses a timestamp cell using the supported layouts.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}
