package gaps

import (
	"math"
	"time"
)

// GapRecord describes one maximal contiguous run of missing values in a
// single column. Indices are inclusive on both ends.
type GapRecord struct {
	StartIndex int       `json:"start_index"`
	EndIndex   int       `json:"end_index"`
	Length     int       `json:"length"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

// FindGaps scans a column once and returns every missing run in sequence
// order. Leading and trailing runs are included; an all-missing column
// yields a single gap spanning the whole series; empty input yields nil.
// The function is pure: no state is retained between calls.
func FindGaps(values []float64, times []time.Time) []GapRecord {
	var gaps []GapRecord
	start := -1

	for i, v := range values {
		if math.IsNaN(v) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			gaps = append(gaps, newGap(start, i-1, times))
			start = -1
		}
	}
	if start >= 0 {
		gaps = append(gaps, newGap(start, len(values)-1, times))
	}
	return gaps
}

func newGap(start, end int, times []time.Time) GapRecord {
	g := GapRecord{
		StartIndex: start,
		EndIndex:   end,
		Length:     end - start + 1,
	}
	if len(times) > end {
		g.StartTime = times[start]
		g.EndTime = times[end]
	}
	return g
}
