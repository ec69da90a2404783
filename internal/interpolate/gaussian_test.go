package interpolate

import (
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsobaCloud/platform/internal/recommend"
	"github.com/AsobaCloud/platform/internal/shared/testutil"
)

func gpConfig() recommend.MethodConfiguration {
	return recommend.DefaultConfiguration(nil).For(recommend.MethodGaussianProcess)
}

func TestGaussianProcessNotFitted(t *testing.T) {
	g := NewGaussianProcess(gpConfig(), nil)
	_, err := g.Interpolate(testFrameWithGap(t))

	var notFitted *NotFittedError
	require.ErrorAs(t, err, &notFitted)
}

func TestGaussianProcessFillsAllGaps(t *testing.T) {
	f := testutil.SolarFrame(200, "inverter_1")
	testutil.Mask(f, "inverter_1", 30, 31, 32, 100, 150)

	g := NewGaussianProcess(gpConfig(), nil)
	require.NoError(t, g.Fit(f, []string{"inverter_1"}, nil))
	filled, err := g.Interpolate(f)
	require.NoError(t, err)

	requireNoMissing(t, filled, "inverter_1")
	for i := range filled.Times {
		v := filled.Value(i, "inverter_1")
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "row %d must be finite", i)
		assert.GreaterOrEqual(t, v, 0.0, "negative power must be clipped")
	}
}

func TestGaussianProcessNighttimeZero(t *testing.T) {
	f := testutil.SolarFrame(96, "inverter_1")
	testutil.Mask(f, "inverter_1", 1, 2, 3) // nighttime rows

	g := NewGaussianProcess(gpConfig(), nil)
	require.NoError(t, g.Fit(f, []string{"inverter_1"}, nil))
	filled, err := g.Interpolate(f)
	require.NoError(t, err)

	for _, r := range []int{1, 2, 3} {
		assert.Zero(t, filled.Value(r, "inverter_1"))
	}
}

func TestGaussianProcessSkipsTinyColumn(t *testing.T) {
	f := testutil.SolarFrame(12, "inverter_1")
	testutil.MaskRange(f, "inverter_1", 0, 4) // 8 observations left

	logger, captured := testutil.NewLogger(t)
	g := NewGaussianProcess(gpConfig(), logger)
	require.NoError(t, g.Fit(f, []string{"inverter_1"}, nil))

	filled, err := g.Interpolate(f)
	require.NoError(t, err)
	assert.Equal(t, 4, filled.MissingCount("inverter_1"))
	assert.True(t, captured.Contains(slog.LevelWarn, "too few observations"))
}

func TestGaussianProcessDeterministic(t *testing.T) {
	f := testutil.SolarFrame(150, "inverter_1")
	testutil.Mask(f, "inverter_1", 60, 61)

	run := func() []float64 {
		g := NewGaussianProcess(gpConfig(), nil)
		require.NoError(t, g.Fit(f, []string{"inverter_1"}, nil))
		filled, err := g.Interpolate(f)
		require.NoError(t, err)
		return []float64{filled.Value(60, "inverter_1"), filled.Value(61, "inverter_1")}
	}

	assert.Equal(t, run(), run())
}
