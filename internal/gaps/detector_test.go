package gaps

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourly(n int) []time.Time {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, n)
	for i := range times {
		times[i] = base.Add(time.Duration(i) * time.Hour)
	}
	return times
}

func TestFindGaps(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name   string
		values []float64
		want   []GapRecord
	}{
		{
			name:   "no gaps",
			values: []float64{1, 2, 3},
			want:   nil,
		},
		{
			name:   "empty input",
			values: nil,
			want:   nil,
		},
		{
			name:   "interior gap",
			values: []float64{1, nan, nan, 4},
			want: []GapRecord{
				{StartIndex: 1, EndIndex: 2, Length: 2},
			},
		},
		{
			name:   "leading gap",
			values: []float64{nan, 2, 3},
			want: []GapRecord{
				{StartIndex: 0, EndIndex: 0, Length: 1},
			},
		},
		{
			name:   "trailing gap",
			values: []float64{1, 2, nan},
			want: []GapRecord{
				{StartIndex: 2, EndIndex: 2, Length: 1},
			},
		},
		{
			name:   "all missing",
			values: []float64{nan, nan, nan},
			want: []GapRecord{
				{StartIndex: 0, EndIndex: 2, Length: 3},
			},
		},
		{
			name:   "two gaps",
			values: []float64{nan, 1, nan, nan, 1},
			want: []GapRecord{
				{StartIndex: 0, EndIndex: 0, Length: 1},
				{StartIndex: 2, EndIndex: 3, Length: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times := hourly(len(tt.values))
			got := FindGaps(tt.values, times)

			require.Len(t, got, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want.StartIndex, got[i].StartIndex)
				assert.Equal(t, want.EndIndex, got[i].EndIndex)
				assert.Equal(t, want.Length, got[i].Length)
				assert.True(t, got[i].StartTime.Equal(times[want.StartIndex]))
				assert.True(t, got[i].EndTime.Equal(times[want.EndIndex]))
			}
		})
	}
}

func TestFindGapsIsPure(t *testing.T) {
	values := []float64{1, math.NaN(), 3}
	times := hourly(len(values))

	first := FindGaps(values, times)
	second := FindGaps(values, times)
	assert.Equal(t, first, second)
}
