package gaps

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Gap length histogram bins in hours. Edges and labels are a fixed ordered
// parallel pair: bin i covers [edge[i], edge[i+1]), except the last bin
// which includes its right edge. Lengths above the last edge are not
// counted.
var (
	BinEdges  = []int{1, 2, 3, 6, 12, 24, 48, 168, 1000}
	BinLabels = []string{"1h", "2h", "3h", "6h", "12h", "1d", "2d", "1w"}
)

// LengthStats summarizes the distribution of gap lengths.
type LengthStats struct {
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
}

// ColumnGapSummary aggregates the gaps found in one power column.
type ColumnGapSummary struct {
	TotalGaps             int              `json:"total_gaps"`
	TotalMissingValues    int              `json:"total_missing_values"`
	MissingPercentage     float64          `json:"missing_percentage"`
	GapLengthStats        LengthStats      `json:"gap_length_stats"`
	GapLengthDistribution map[string]int   `json:"gap_length_distribution"`
	SampleGaps            []GapRecord      `json:"gaps"`
}

// OverallStats pools gap statistics across all power columns.
type OverallStats struct {
	TotalGaps                int            `json:"total_gaps"`
	TotalMissingValues       int            `json:"total_missing_values"`
	OverallMissingPercentage float64        `json:"overall_missing_percentage"`
	GapLengthStats           LengthStats    `json:"gap_length_stats"`
	GapLengthDistribution    map[string]int `json:"gap_length_distribution"`
}

// maxSampleGaps limits how many example gaps are stored per column.
const maxSampleGaps = 10

// Summarize builds a ColumnGapSummary from the gaps of one column.
// totalRows is the row count of the dataset the column came from.
func Summarize(gapList []GapRecord, totalRows int) ColumnGapSummary {
	lengths := make([]int, len(gapList))
	missing := 0
	for i, g := range gapList {
		lengths[i] = g.Length
		missing += g.Length
	}

	summary := ColumnGapSummary{
		TotalGaps:             len(gapList),
		TotalMissingValues:    missing,
		GapLengthStats:        lengthStats(lengths),
		GapLengthDistribution: BinLengths(lengths),
	}
	if totalRows > 0 {
		summary.MissingPercentage = float64(missing) / float64(totalRows) * 100
	}
	if len(gapList) > maxSampleGaps {
		summary.SampleGaps = append([]GapRecord(nil), gapList[:maxSampleGaps]...)
	} else {
		summary.SampleGaps = append([]GapRecord(nil), gapList...)
	}
	return summary
}

// Pool combines per-column gaps into overall statistics. cells is the
// total number of observable cells (rows x power columns).
func Pool(allGaps []GapRecord, cells int) OverallStats {
	lengths := make([]int, len(allGaps))
	missing := 0
	for i, g := range allGaps {
		lengths[i] = g.Length
		missing += g.Length
	}
	overall := OverallStats{
		TotalGaps:             len(allGaps),
		TotalMissingValues:    missing,
		GapLengthStats:        lengthStats(lengths),
		GapLengthDistribution: BinLengths(lengths),
	}
	if cells > 0 {
		overall.OverallMissingPercentage = float64(missing) / float64(cells) * 100
	}
	return overall
}

// BinLengths assigns gap lengths (in hours) to the fixed histogram bins.
func BinLengths(lengths []int) map[string]int {
	dist := make(map[string]int, len(BinLabels))
	for _, label := range BinLabels {
		dist[label] = 0
	}
	last := len(BinEdges) - 2
	for _, l := range lengths {
		for i := 0; i <= last; i++ {
			hi := BinEdges[i+1]
			if l >= BinEdges[i] && (l < hi || (i == last && l <= hi)) {
				dist[BinLabels[i]]++
				break
			}
		}
	}
	return dist
}

func lengthStats(lengths []int) LengthStats {
	if len(lengths) == 0 {
		return LengthStats{}
	}
	vals := make([]float64, len(lengths))
	min, max := lengths[0], lengths[0]
	for i, l := range lengths {
		vals[i] = float64(l)
		if l < min {
			min = l
		}
		if l > max {
			max = l
		}
	}
	return LengthStats{
		Min:    min,
		Max:    max,
		Mean:   stat.Mean(vals, nil),
		Median: median(vals),
		Std:    stat.PopStdDev(vals, nil),
	}
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
