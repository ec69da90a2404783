package interpolate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AsobaCloud/platform/internal/recommend"
	"github.com/AsobaCloud/platform/internal/shared/testutil"
	"github.com/AsobaCloud/platform/internal/timeseries"
)

// testFrameWithGap is a two-day hourly bell-curve frame with a short midday
// gap in inverter_1.
func testFrameWithGap(t *testing.T) *timeseries.Frame {
	t.Helper()
	f := testutil.SolarFrame(48, "inverter_1")
	return testutil.Mask(f, "inverter_1", 11, 12, 13)
}

func splineConfig() recommend.MethodConfiguration {
	return recommend.DefaultConfiguration(nil).For(recommend.MethodSpline)
}

// maeOver computes the mean absolute error of a column against the ideal
// bell curve over the given rows.
func maeOver(f *timeseries.Frame, column string, peak float64, rows []int) float64 {
	var sum float64
	for _, r := range rows {
		sum += math.Abs(f.Value(r, column) - testutil.SolarValue(r, peak))
	}
	return sum / float64(len(rows))
}

func requireNoMissing(t *testing.T, f *timeseries.Frame, column string) {
	t.Helper()
	require.Zero(t, f.MissingCount(column), "column %s must be fully filled", column)
}
