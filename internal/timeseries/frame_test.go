package timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameNormalize(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	f := NewFrame("datetime")
	f.Times = []time.Time{
		base.Add(2 * time.Hour),
		base,
		base.Add(time.Hour),
		base.Add(time.Hour), // duplicate
	}
	require.NoError(t, f.SetColumn("inverter_1", []float64{3, 1, 2, 99}))

	dropped := f.Normalize()

	assert.Equal(t, 1, dropped)
	require.Equal(t, 3, f.Len())
	assert.Equal(t, []float64{1, 2, 3}, f.Column("inverter_1"))
	for i := 1; i < f.Len(); i++ {
		assert.True(t, f.Times[i].After(f.Times[i-1]), "timestamps must be strictly increasing")
	}
}

func TestFrameCompleteRows(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := NewFrame("datetime")
	for i := 0; i < 4; i++ {
		f.Times = append(f.Times, base.Add(time.Duration(i)*time.Hour))
	}
	require.NoError(t, f.SetColumn("a", []float64{1, math.NaN(), 3, 4}))
	require.NoError(t, f.SetColumn("b", []float64{1, 2, math.NaN(), 4}))

	assert.Equal(t, []int{0, 3}, f.CompleteRows([]string{"a", "b"}))
	assert.Equal(t, []int{0, 2, 3}, f.CompleteRows([]string{"a"}))
	assert.Empty(t, f.CompleteRows([]string{"a", "missing"}))
}

func TestFrameCloneIsIndependent(t *testing.T) {
	f := NewFrame("datetime")
	f.Times = []time.Time{time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	require.NoError(t, f.SetColumn("a", []float64{1}))

	c := f.Clone()
	c.SetValue(0, "a", 42)

	assert.Equal(t, 1.0, f.Value(0, "a"))
	assert.Equal(t, 42.0, c.Value(0, "a"))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{
			name:  "space separated",
			input: "2024-06-01 13:00:00",
			want:  time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "rfc3339",
			input: "2024-06-01T13:00:00Z",
			want:  time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "date only",
			input: "2024-06-01",
			want:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "garbage",
			input: "not a time",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

func TestMissingCount(t *testing.T) {
	f := NewFrame("datetime")
	f.Times = make([]time.Time, 3)
	require.NoError(t, f.SetColumn("a", []float64{math.NaN(), 1, math.NaN()}))

	assert.Equal(t, 2, f.MissingCount("a"))
	assert.Equal(t, 0, f.MissingCount("absent"))
}
