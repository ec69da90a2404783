package recommend

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Interpolation method names. These are the keys accepted by the engine
// dispatcher; the *Aware names resolve to fallback strategies there.
const (
	MethodSpline            = "spline_interpolation"
	MethodGaussianProcess   = "gaussian_process"
	MethodPhysicsBased      = "physics_based_model"
	MethodMultiOutput       = "multi_output_regression"
	MethodSystemLevel       = "system_level_interpolation"
	MethodDegradationAware  = "degradation_aware_interpolation"
	MethodMaintenanceAware  = "maintenance_aware_interpolation"
	MethodEquipmentSpecific = "equipment_specific_interpolation"
)

// SolarConstraints configures the physical post-processing applied to every
// interpolated series.
type SolarConstraints struct {
	NighttimeZero    bool               `json:"nighttime_zero"`
	NegativeClipping bool               `json:"negative_clipping"`
	MaxPowerLimits   map[string]float64 `json:"max_power_limits,omitempty" validate:"omitempty,dive,gt=0"`
	MaxEfficiency    float64            `json:"max_efficiency,omitempty" validate:"omitempty,gt=0,lte=1"`
}

// DefaultSolarConstraints returns the constraint block attached to every
// recommendation: nighttime forced to zero, negatives clipped, efficiency
// capped at 95%.
func DefaultSolarConstraints() SolarConstraints {
	return SolarConstraints{
		NighttimeZero:    true,
		NegativeClipping: true,
		MaxEfficiency:    0.95,
	}
}

// ModelParameters are the tree-ensemble hyperparameters for the regression
// strategy.
type ModelParameters struct {
	NEstimators     int     `json:"n_estimators" validate:"gt=0"`
	MaxDepth        int     `json:"max_depth" validate:"gt=0"`
	LearningRate    float64 `json:"learning_rate" validate:"gt=0,lte=1"`
	FeatureFraction float64 `json:"feature_fraction" validate:"gt=0,lte=1"`
	RandomState     int64   `json:"random_state"`
}

// DefaultModelParameters returns the fixed tree-ensemble defaults.
func DefaultModelParameters() ModelParameters {
	return ModelParameters{
		NEstimators:     200,
		MaxDepth:        6,
		LearningRate:    0.1,
		FeatureFraction: 0.9,
		RandomState:     42,
	}
}

// MultiOutputConfig configures the multi-output regression strategy.
type MultiOutputConfig struct {
	ModelEquipmentIndependently bool             `json:"model_equipment_independently"`
	UseEquipmentCorrelation     bool             `json:"use_equipment_correlation"`
	CorrelationFeatures         []string         `json:"correlation_features"`
	SharedFeatures              []string         `json:"shared_features"`
	ApplySolarConstraints       bool             `json:"apply_solar_constraints"`
	SolarConstraints            SolarConstraints `json:"solar_constraints"`
	ModelParameters             ModelParameters  `json:"model_parameters"`
}

// SplineConfig configures the cubic-spline strategy.
type SplineConfig struct {
	Method                string           `json:"method" validate:"oneof=cubic"`
	FillValue             string           `json:"fill_value"`
	ApplySolarConstraints bool             `json:"apply_solar_constraints"`
	SolarConstraints      SolarConstraints `json:"solar_constraints"`
}

// GaussianProcessConfig configures the Gaussian-process strategy.
type GaussianProcessConfig struct {
	Kernel                string           `json:"kernel"`
	Alpha                 float64          `json:"alpha" validate:"gt=0"`
	ApplySolarConstraints bool             `json:"apply_solar_constraints"`
	SolarConstraints      SolarConstraints `json:"solar_constraints"`
}

// PhysicsConfig configures the physics-based strategy.
type PhysicsConfig struct {
	UseSolarPosition      bool             `json:"use_solar_position"`
	UseWeatherCorrelation bool             `json:"use_weather_correlation"`
	ApplySolarConstraints bool             `json:"apply_solar_constraints"`
	SolarConstraints      SolarConstraints `json:"solar_constraints"`
}

// Configuration carries the per-method parameter blocks embedded in a
// recommendation document.
type Configuration struct {
	MultiOutputRegression MultiOutputConfig     `json:"multi_output_regression"`
	SplineInterpolation   SplineConfig          `json:"spline_interpolation"`
	GaussianProcess       GaussianProcessConfig `json:"gaussian_process"`
	PhysicsBasedModel     PhysicsConfig         `json:"physics_based_model"`
}

// MethodConfiguration is the resolved configuration the engine hands to the
// chosen strategy. It is immutable once built.
type MethodConfiguration struct {
	MethodName                  string
	Parameters                  ModelParameters
	SolarConstraints            SolarConstraints
	CorrelationFeatures         []string
	ModelEquipmentIndependently bool
	UseEquipmentCorrelation     bool
	ApplySolarConstraints       bool
}

var validate = validator.New()

// Validate checks a configuration document once at load time, so strategies
// never have to re-check nested parameter blocks.
func (c *Configuration) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid method configuration: %w", err)
	}
	return nil
}

// Normalize fills any per-method block the document did not carry with the
// default block, so a minimal document still gets the solar post-processing
// every strategy finishes with. Blocks the document does carry are left
// untouched.
func (c *Configuration) Normalize(powerColumns []string) {
	def := DefaultConfiguration(powerColumns)
	if c.MultiOutputRegression.ModelParameters.NEstimators == 0 {
		c.MultiOutputRegression = def.MultiOutputRegression
	}
	if c.SplineInterpolation.Method == "" {
		c.SplineInterpolation = def.SplineInterpolation
	}
	if c.GaussianProcess.Kernel == "" {
		c.GaussianProcess = def.GaussianProcess
	}
	if c.PhysicsBasedModel.isZero() {
		c.PhysicsBasedModel = def.PhysicsBasedModel
	}
}

func (p PhysicsConfig) isZero() bool {
	return !p.UseSolarPosition && !p.UseWeatherCorrelation &&
		!p.ApplySolarConstraints && p.SolarConstraints.isZero()
}

func (s SolarConstraints) isZero() bool {
	return !s.NighttimeZero && !s.NegativeClipping &&
		len(s.MaxPowerLimits) == 0 && s.MaxEfficiency == 0
}

// For resolves the per-method block for a method name. Alias methods reuse
// the block of the strategy they dispatch to.
func (c Configuration) For(method string) MethodConfiguration {
	switch method {
	case MethodMultiOutput, MethodSystemLevel:
		mo := c.MultiOutputRegression
		return MethodConfiguration{
			MethodName:                  method,
			Parameters:                  mo.ModelParameters,
			SolarConstraints:            mo.SolarConstraints,
			CorrelationFeatures:         mo.CorrelationFeatures,
			ModelEquipmentIndependently: mo.ModelEquipmentIndependently,
			UseEquipmentCorrelation:     mo.UseEquipmentCorrelation,
			ApplySolarConstraints:       mo.ApplySolarConstraints,
		}
	case MethodGaussianProcess, MethodDegradationAware:
		gp := c.GaussianProcess
		return MethodConfiguration{
			MethodName:            method,
			SolarConstraints:      gp.SolarConstraints,
			ApplySolarConstraints: gp.ApplySolarConstraints,
		}
	case MethodPhysicsBased, MethodMaintenanceAware:
		ph := c.PhysicsBasedModel
		return MethodConfiguration{
			MethodName:            method,
			SolarConstraints:      ph.SolarConstraints,
			ApplySolarConstraints: ph.ApplySolarConstraints,
		}
	default:
		sp := c.SplineInterpolation
		return MethodConfiguration{
			MethodName:            method,
			SolarConstraints:      sp.SolarConstraints,
			ApplySolarConstraints: sp.ApplySolarConstraints,
		}
	}
}

// DefaultConfiguration builds the standard per-method blocks. Correlation
// features carry the actual power column names when there are at least
// three columns to correlate.
func DefaultConfiguration(powerColumns []string) Configuration {
	constraints := DefaultSolarConstraints()

	correlationFeatures := []string{}
	if len(powerColumns) >= 3 {
		correlationFeatures = append(correlationFeatures, powerColumns...)
	}

	return Configuration{
		MultiOutputRegression: MultiOutputConfig{
			ModelEquipmentIndependently: true,
			UseEquipmentCorrelation:     true,
			CorrelationFeatures:         correlationFeatures,
			SharedFeatures:              []string{"weather_data", "time_features"},
			ApplySolarConstraints:       true,
			SolarConstraints:            constraints,
			ModelParameters:             DefaultModelParameters(),
		},
		SplineInterpolation: SplineConfig{
			Method:                "cubic",
			FillValue:             "extrapolate",
			ApplySolarConstraints: true,
			SolarConstraints: SolarConstraints{
				NighttimeZero:    true,
				NegativeClipping: true,
			},
		},
		GaussianProcess: GaussianProcessConfig{
			Kernel:                "rbf",
			Alpha:                 1e-6,
			ApplySolarConstraints: true,
			SolarConstraints: SolarConstraints{
				NighttimeZero:    true,
				NegativeClipping: true,
			},
		},
		PhysicsBasedModel: PhysicsConfig{
			UseSolarPosition:      true,
			UseWeatherCorrelation: true,
			ApplySolarConstraints: true,
			SolarConstraints:      constraints,
		},
	}
}
