package recommend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsobaCloud/platform/internal/patterns"
)

func profileWith(primary string, secondary ...string) patterns.Profile {
	return patterns.Profile{
		PatternSummary: patterns.Summary{
			PrimaryPattern:    primary,
			SecondaryPatterns: secondary,
		},
	}
}

func TestRecommendSystemWide(t *testing.T) {
	r := NewRecommender(nil)
	rec := r.Recommend(profileWith("system_wide_failures"), nil, []string{"inverter_1"})

	assert.Equal(t, MethodSystemLevel, rec.PrimaryMethod)
	assert.True(t, rec.MethodParameters.UseSystemCorrelation)
	assert.True(t, rec.MethodParameters.ApplySolarConstraints)
	assert.NotEmpty(t, rec.Reasoning)
}

func TestRecommendIndividualBranches(t *testing.T) {
	tests := []struct {
		name      string
		secondary []string
		want      string
	}{
		{"degradation wins", []string{"equipment_degradation", "maintenance_patterns"}, MethodDegradationAware},
		{"maintenance", []string{"maintenance_patterns"}, MethodMaintenanceAware},
		{"random failures", []string{"random_failures"}, MethodEquipmentSpecific},
		{"no secondary patterns", nil, MethodMultiOutput},
	}

	r := NewRecommender(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := r.Recommend(profileWith("individual_equipment_failures", tt.secondary...), nil, nil)
			assert.Equal(t, tt.want, rec.PrimaryMethod)
			assert.True(t, rec.MethodParameters.ApplySolarConstraints)
		})
	}
}

func TestRecommendByGapDistribution(t *testing.T) {
	tests := []struct {
		name string
		dist map[string]int
		want string
	}{
		{
			name: "short gaps dominate",
			dist: map[string]int{"1h": 8, "2h": 1, "1d": 1},
			want: MethodSpline,
		},
		{
			name: "medium gaps",
			dist: map[string]int{"1h": 4, "6h": 3, "12h": 1, "1d": 2},
			want: MethodGaussianProcess,
		},
		{
			name: "long outages",
			dist: map[string]int{"1h": 5, "1d": 2, "1w": 1},
			want: MethodPhysicsBased,
		},
		{
			name: "nothing dominates",
			dist: map[string]int{},
			want: MethodSpline,
		},
	}

	r := NewRecommender(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := r.Recommend(profileWith("unknown"), tt.dist, nil)
			assert.Equal(t, tt.want, rec.PrimaryMethod)
		})
	}
}

func TestRecommendGapSpecificRecommendations(t *testing.T) {
	r := NewRecommender(nil)
	rec := r.Recommend(profileWith("unknown"), map[string]int{"1h": 10}, nil)

	require.NotNil(t, rec.GapSpecificRecommendations)
	assert.Equal(t, MethodSpline, rec.GapSpecificRecommendations.ShortGaps)
	assert.Equal(t, MethodGaussianProcess, rec.GapSpecificRecommendations.MediumGaps)
	assert.Equal(t, MethodPhysicsBased, rec.GapSpecificRecommendations.LongGaps)
}

func TestRecommendDeterministic(t *testing.T) {
	r := NewRecommender(nil)
	profile := profileWith("individual_equipment_failures", "equipment_degradation")
	dist := map[string]int{"1h": 3, "6h": 2}
	cols := []string{"inverter_1", "inverter_2", "inverter_3"}

	first := r.Recommend(profile, dist, cols)
	second := r.Recommend(profile, dist, cols)
	require.Equal(t, first, second)
}

func TestDefaultConfiguration(t *testing.T) {
	cfg := DefaultConfiguration([]string{"inverter_1", "inverter_2", "inverter_3"})

	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"inverter_1", "inverter_2", "inverter_3"}, cfg.MultiOutputRegression.CorrelationFeatures)
	assert.Equal(t, 0.95, cfg.MultiOutputRegression.SolarConstraints.MaxEfficiency)

	params := cfg.MultiOutputRegression.ModelParameters
	assert.Equal(t, 200, params.NEstimators)
	assert.Equal(t, 6, params.MaxDepth)
	assert.Equal(t, 0.1, params.LearningRate)
	assert.Equal(t, 0.9, params.FeatureFraction)
	assert.Equal(t, int64(42), params.RandomState)
}

func TestDefaultConfigurationFewColumns(t *testing.T) {
	cfg := DefaultConfiguration([]string{"inverter_1", "inverter_2"})
	assert.Empty(t, cfg.MultiOutputRegression.CorrelationFeatures,
		"correlation features need at least three columns")
}

func TestConfigurationFor(t *testing.T) {
	cfg := DefaultConfiguration(nil)

	mo := cfg.For(MethodSystemLevel)
	assert.Equal(t, 200, mo.Parameters.NEstimators)
	assert.True(t, mo.UseEquipmentCorrelation)

	sp := cfg.For("anything_else")
	assert.True(t, sp.ApplySolarConstraints)
	assert.Zero(t, sp.Parameters.NEstimators)
}

func TestConfigurationForOnUnaddressedValue(t *testing.T) {
	cfg := DefaultConfiguration(nil).For(MethodSpline)
	assert.True(t, cfg.ApplySolarConstraints)
	assert.True(t, cfg.SolarConstraints.NighttimeZero)
}

func TestNormalizeFillsMissingBlocks(t *testing.T) {
	var cfg Configuration
	cfg.Normalize([]string{"inverter_1"})

	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.SplineInterpolation.ApplySolarConstraints)
	assert.True(t, cfg.SplineInterpolation.SolarConstraints.NighttimeZero)
	assert.True(t, cfg.PhysicsBasedModel.ApplySolarConstraints)
	assert.Equal(t, "rbf", cfg.GaussianProcess.Kernel)
	assert.Equal(t, 200, cfg.MultiOutputRegression.ModelParameters.NEstimators)
}

func TestNormalizeKeepsSuppliedBlocks(t *testing.T) {
	cfg := DefaultConfiguration(nil)
	cfg.SplineInterpolation.SolarConstraints.MaxPowerLimits = map[string]float64{"inverter_1": 5000}
	cfg.Normalize(nil)

	assert.Equal(t, 5000.0, cfg.SplineInterpolation.SolarConstraints.MaxPowerLimits["inverter_1"],
		"a block the document carries is left untouched")
}

func TestResolvePrimaryMethodLegacyShim(t *testing.T) {
	doc := []byte(`{"primary_methods": ["gaussian_process", "spline_interpolation"]}`)
	var rec Recommendations
	require.NoError(t, json.Unmarshal(doc, &rec))

	assert.Equal(t, MethodGaussianProcess, rec.ResolvePrimaryMethod())

	rec.PrimaryMethod = MethodPhysicsBased
	assert.Equal(t, MethodPhysicsBased, rec.ResolvePrimaryMethod(),
		"singular key wins over the legacy list")
}

func TestConfigurationValidateRejectsBadEfficiency(t *testing.T) {
	cfg := DefaultConfiguration(nil)
	cfg.MultiOutputRegression.SolarConstraints.MaxEfficiency = 1.5
	assert.Error(t, cfg.Validate())
}
