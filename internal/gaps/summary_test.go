package gaps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinLengthsBoundaries(t *testing.T) {
	tests := []struct {
		length int
		bin    string
	}{
		{1, "1h"},
		{2, "2h"},
		{3, "3h"},
		{4, "3h"},
		{5, "3h"},
		{6, "6h"},
		{11, "6h"},
		{12, "12h"},
		{23, "12h"},
		{24, "1d"},
		{47, "1d"},
		{48, "2d"},
		{167, "2d"},
		{168, "1w"},
		{999, "1w"},
		{1000, "1w"}, // last bin includes its right edge
	}

	for _, tt := range tests {
		dist := BinLengths([]int{tt.length})
		total := 0
		for label, n := range dist {
			total += n
			if n == 1 {
				assert.Equal(t, tt.bin, label, "length %d landed in %s, want %s", tt.length, label, tt.bin)
			}
		}
		assert.Equal(t, 1, total, "length %d must land in exactly one bin", tt.length)
	}
}

func TestBinLengthsOutOfRange(t *testing.T) {
	dist := BinLengths([]int{1001})
	for label, n := range dist {
		assert.Zero(t, n, "length beyond the last edge must not count in %s", label)
	}
}

func TestBinLengthsAllLabelsPresent(t *testing.T) {
	dist := BinLengths(nil)
	require.Len(t, dist, len(BinLabels))
	for _, label := range BinLabels {
		assert.Contains(t, dist, label)
	}
}

func TestSummarize(t *testing.T) {
	gapList := []GapRecord{
		{StartIndex: 0, EndIndex: 0, Length: 1},
		{StartIndex: 5, EndIndex: 7, Length: 3},
		{StartIndex: 20, EndIndex: 27, Length: 8},
	}

	s := Summarize(gapList, 100)

	assert.Equal(t, 3, s.TotalGaps)
	assert.Equal(t, 12, s.TotalMissingValues)
	assert.InDelta(t, 12.0, s.MissingPercentage, 1e-9)
	assert.Equal(t, 1, s.GapLengthStats.Min)
	assert.Equal(t, 8, s.GapLengthStats.Max)
	assert.InDelta(t, 4.0, s.GapLengthStats.Mean, 1e-9)
	assert.InDelta(t, 3.0, s.GapLengthStats.Median, 1e-9)
	assert.Len(t, s.SampleGaps, 3)
}

func TestSummarizeCapsSampleGaps(t *testing.T) {
	var gapList []GapRecord
	for i := 0; i < 25; i++ {
		gapList = append(gapList, GapRecord{StartIndex: i * 3, EndIndex: i * 3, Length: 1})
	}

	s := Summarize(gapList, 1000)

	assert.Equal(t, 25, s.TotalGaps)
	assert.Len(t, s.SampleGaps, maxSampleGaps)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 100)
	assert.Zero(t, s.TotalGaps)
	assert.Zero(t, s.MissingPercentage)
	assert.Zero(t, s.GapLengthStats.Mean)
}

func TestPool(t *testing.T) {
	all := []GapRecord{
		{Length: 2},
		{Length: 4},
	}
	o := Pool(all, 200)

	assert.Equal(t, 2, o.TotalGaps)
	assert.Equal(t, 6, o.TotalMissingValues)
	assert.InDelta(t, 3.0, o.OverallMissingPercentage, 1e-9)
}
