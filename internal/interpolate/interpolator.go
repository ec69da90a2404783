// Package interpolate fills gaps in solar power time series. It provides
// four strategies behind a common interface (cubic spline, Gaussian
// process, physics-based clear-sky model, multi-output tree regression)
// plus the engine that picks a strategy from a gap-analysis document,
// validates it on synthetically masked data and writes the filled dataset.
package interpolate

import (
	"fmt"
	"log/slog"

	"github.com/AsobaCloud/platform/internal/recommend"
	"github.com/AsobaCloud/platform/internal/timeseries"
)

// Strategy fills missing values in power columns. Fit learns from the
// observed values; Interpolate returns a copy of the frame with gaps
// filled. Implementations return NotFittedError when Interpolate is called
// before a successful Fit.
type Strategy interface {
	MethodName() string
	Fit(data *timeseries.Frame, columns []string, weather *timeseries.WeatherFrame) error
	Interpolate(data *timeseries.Frame) (*timeseries.Frame, error)
}

// NotFittedError reports Interpolate called before Fit.
type NotFittedError struct {
	Method string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("interpolate: %s used before Fit", e.Method)
}

// ConfigurationError reports an unusable engine input: a malformed
// gap-analysis document or an explicitly requested method that does not
// exist.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "interpolate: " + e.Reason
}

// Methods returns the canonical strategy names in dispatch order, for the
// CLI method listing.
func Methods() []string {
	return []string{
		recommend.MethodSpline,
		recommend.MethodGaussianProcess,
		recommend.MethodPhysicsBased,
		recommend.MethodMultiOutput,
	}
}

// canonicalMethod maps recommendation aliases onto the strategy that
// implements them. The *Aware methods describe why a method was chosen;
// execution falls through to the closest concrete strategy.
func canonicalMethod(method string) (string, bool) {
	switch method {
	case recommend.MethodSpline, recommend.MethodGaussianProcess,
		recommend.MethodPhysicsBased, recommend.MethodMultiOutput:
		return method, true
	case recommend.MethodSystemLevel:
		return recommend.MethodMultiOutput, true
	case recommend.MethodDegradationAware:
		return recommend.MethodGaussianProcess, true
	case recommend.MethodMaintenanceAware:
		return recommend.MethodPhysicsBased, true
	case recommend.MethodEquipmentSpecific:
		return recommend.MethodSpline, true
	default:
		return "", false
	}
}

// newStrategy builds the strategy implementing a canonical method name.
func newStrategy(method string, cfg recommend.MethodConfiguration, logger *slog.Logger) (Strategy, error) {
	switch method {
	case recommend.MethodSpline:
		return NewSpline(cfg, logger), nil
	case recommend.MethodGaussianProcess:
		return NewGaussianProcess(cfg, logger), nil
	case recommend.MethodPhysicsBased:
		return NewPhysicsModel(cfg, logger), nil
	case recommend.MethodMultiOutput:
		return NewMultiOutput(cfg, logger), nil
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown interpolation method %q", method)}
	}
}
