package interpolate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsobaCloud/platform/internal/shared/testutil"
)

func TestSplineNotFitted(t *testing.T) {
	s := NewSpline(splineConfig(), nil)
	_, err := s.Interpolate(testFrameWithGap(t))

	var notFitted *NotFittedError
	require.ErrorAs(t, err, &notFitted)
}

func TestSplineRecoversBellCurve(t *testing.T) {
	// ~42 days of clean hourly data with scattered daytime gaps.
	const rows = 1000
	const peak = 5000.0
	f := testutil.SolarFrame(rows, "inverter_1")
	var masked []int
	for r := 10; r < rows-10; r += 97 {
		masked = append(masked, r)
	}
	testutil.Mask(f, "inverter_1", masked...)

	s := NewSpline(splineConfig(), nil)
	require.NoError(t, s.Fit(f, []string{"inverter_1"}, nil))
	filled, err := s.Interpolate(f)
	require.NoError(t, err)

	requireNoMissing(t, filled, "inverter_1")
	assert.Less(t, maeOver(filled, "inverter_1", peak, masked), 0.1*peak,
		"reconstruction error must stay within 10%% of peak power")

	for _, r := range masked {
		hour := filled.Times[r].Hour()
		if hour <= 5 || hour >= 19 {
			assert.Zero(t, filled.Value(r, "inverter_1"),
				"nighttime row %d must be exactly zero", r)
		}
	}
}

func TestSplineClampsExtrapolation(t *testing.T) {
	f := testutil.SolarFrame(48, "inverter_1")
	// Missing run at the very end: no right-hand anchor exists.
	testutil.MaskRange(f, "inverter_1", 40, 48)

	s := NewSpline(splineConfig(), nil)
	require.NoError(t, s.Fit(f, []string{"inverter_1"}, nil))
	filled, err := s.Interpolate(f)
	require.NoError(t, err)

	requireNoMissing(t, filled, "inverter_1")
	// Rows 40-47 cover 16:00-23:00; constraints zero the nighttime part and
	// the clamped daytime predictions stay finite and non-negative.
	for r := 40; r < 48; r++ {
		v := filled.Value(r, "inverter_1")
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestSplineSkipsSparseColumn(t *testing.T) {
	f := testutil.SolarFrame(48, "inverter_1", "inverter_2")
	// Leave only one observation in inverter_2.
	testutil.MaskRange(f, "inverter_2", 0, 47)

	s := NewSpline(splineConfig(), nil)
	require.NoError(t, s.Fit(f, []string{"inverter_1", "inverter_2"}, nil))
	filled, err := s.Interpolate(f)
	require.NoError(t, err)

	assert.Equal(t, 47, filled.MissingCount("inverter_2"), "unfittable column stays missing")
}

func TestSplineSkipsColumnBelowCubicMinimum(t *testing.T) {
	f := testutil.SolarFrame(48, "inverter_1", "inverter_2")
	// Three observations are not enough for a cubic fit.
	testutil.MaskRange(f, "inverter_2", 0, 45)

	s := NewSpline(splineConfig(), nil)
	require.NoError(t, s.Fit(f, []string{"inverter_1", "inverter_2"}, nil))
	filled, err := s.Interpolate(f)
	require.NoError(t, err)

	assert.Equal(t, 45, filled.MissingCount("inverter_2"), "three observations stay unfilled")
	assert.Zero(t, filled.MissingCount("inverter_1"))

	notes := s.Notes()
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "inverter_2")
}
