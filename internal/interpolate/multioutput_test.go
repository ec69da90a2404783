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

func moConfig() recommend.MethodConfiguration {
	return recommend.DefaultConfiguration([]string{"inverter_1", "inverter_2", "inverter_3"}).
		For(recommend.MethodMultiOutput)
}

func TestMultiOutputNotFitted(t *testing.T) {
	m := NewMultiOutput(moConfig(), nil)
	_, err := m.Interpolate(testFrameWithGap(t))

	var notFitted *NotFittedError
	require.ErrorAs(t, err, &notFitted)
}

func TestMultiOutputCorrelatedMode(t *testing.T) {
	f := testutil.SolarFrame(300, "inverter_1", "inverter_2")
	testutil.Mask(f, "inverter_1", 100, 101, 102)

	m := NewMultiOutput(moConfig(), nil)
	require.NoError(t, m.Fit(f, []string{"inverter_1", "inverter_2"}, nil))
	assert.Equal(t, modePerColumnCorrelated, m.mode)

	filled, err := m.Interpolate(f)
	require.NoError(t, err)
	requireNoMissing(t, filled, "inverter_1")
	for _, r := range []int{100, 101, 102} {
		v := filled.Value(r, "inverter_1")
		assert.False(t, math.IsNaN(v))
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestMultiOutputFallsBackToSpline(t *testing.T) {
	// Far too little data for any tree model.
	f := testutil.SolarFrame(30, "inverter_1")
	cfg := moConfig()
	cfg.UseEquipmentCorrelation = false
	cfg.ModelEquipmentIndependently = true
	testutil.Mask(f, "inverter_1", 12, 13)

	logger, captured := testutil.NewLogger(t)
	m := NewMultiOutput(cfg, logger)
	require.NoError(t, m.Fit(f, []string{"inverter_1"}, nil))

	assert.True(t, captured.Contains(slog.LevelWarn, "falling back to splines"))
	require.NotEmpty(t, m.Notes())
	assert.Contains(t, m.Notes()[0], "falling back to splines")

	filled, err := m.Interpolate(f)
	require.NoError(t, err)
	requireNoMissing(t, filled, "inverter_1")
}

func TestMultiOutputJointMode(t *testing.T) {
	f := testutil.SolarFrame(200, "inverter_1", "inverter_2")
	cfg := moConfig()
	cfg.UseEquipmentCorrelation = false
	cfg.ModelEquipmentIndependently = false
	testutil.Mask(f, "inverter_2", 50)

	m := NewMultiOutput(cfg, nil)
	require.NoError(t, m.Fit(f, []string{"inverter_1", "inverter_2"}, nil))
	assert.Equal(t, modeSingleJoint, m.mode)

	filled, err := m.Interpolate(f)
	require.NoError(t, err)
	requireNoMissing(t, filled, "inverter_2")
}

func TestCorrelationFeaturesAreHistoryOnly(t *testing.T) {
	f := testutil.SolarFrame(60, "inverter_1", "inverter_2")

	corr := map[string]float64{"inverter_2": 0.9}
	before := correlationFeatures(f, "inverter_1", []string{"inverter_2"}, corr)

	// Changing the current row of the other column must not change any
	// feature at that row: everything is lagged or shifted.
	f.SetValue(30, "inverter_2", 99999)
	after := correlationFeatures(f, "inverter_1", []string{"inverter_2"}, corr)

	require.Equal(t, before.Names, after.Names)
	for j, name := range before.Names {
		if name == "inverter_2_available" {
			continue // availability is a same-row indicator, not a history feature
		}
		assert.Equal(t, before.Column(j)[30], after.Column(j)[30],
			"feature %s at the mutated row must only see history", name)
	}
}

func TestCorrelationFeatureValues(t *testing.T) {
	f := testutil.SolarFrame(24, "inverter_1", "inverter_2")
	other := f.Column("inverter_2")

	fs := correlationFeatures(f, "inverter_1", []string{"inverter_2"}, map[string]float64{"inverter_2": 0.8})

	lag1 := featureByName(t, fs, "inverter_2_lag1")
	assert.Equal(t, other[9], lag1[10])
	assert.Zero(t, lag1[0], "no history before the first row")

	strength := featureByName(t, fs, "inverter_2_corr_strength")
	assert.Equal(t, 0.8, strength[5])
}

func featureByName(t *testing.T, fs *FeatureSet, name string) []float64 {
	t.Helper()
	for j, n := range fs.Names {
		if n == name {
			return fs.Column(j)
		}
	}
	t.Fatalf("feature %s not found in %v", name, fs.Names)
	return nil
}
