package interpolate

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/AsobaCloud/platform/internal/recommend"
	"github.com/AsobaCloud/platform/internal/timeseries"
)

// PhysicsModel fills gaps from an idealized clear-sky generation curve. Per
// column it estimates the usable capacity as the 95th percentile of daytime
// observations and the production peak as the daytime hour where the maximum
// reading occurred, then reconstructs a cosine bell between 06:00 and 18:00.
type PhysicsModel struct {
	cfg    recommend.MethodConfiguration
	logger *slog.Logger
	curves map[string]physicsCurve
	notes  []string
}

type physicsCurve struct {
	capacity float64
	peakHour float64
}

const (
	dayStartHour = 6
	dayEndHour   = 18
)

// NewPhysicsModel creates the physics-based strategy.
func NewPhysicsModel(cfg recommend.MethodConfiguration, logger *slog.Logger) *PhysicsModel {
	if logger == nil {
		logger = slog.Default()
	}
	return &PhysicsModel{cfg: cfg, logger: logger}
}

// MethodName implements Strategy.
func (p *PhysicsModel) MethodName() string { return recommend.MethodPhysicsBased }

// Fit estimates the per-column capacity and peak hour from daytime
// observations. Columns with no daytime data are skipped.
func (p *PhysicsModel) Fit(data *timeseries.Frame, columns []string, _ *timeseries.WeatherFrame) error {
	curves := make(map[string]physicsCurve, len(columns))
	p.notes = nil

	for _, col := range columns {
		vals := data.Column(col)
		if vals == nil {
			continue
		}

		var daytime []float64
		best := math.Inf(-1)
		peakHour := 12.0
		for i, v := range vals {
			if math.IsNaN(v) {
				continue
			}
			h := data.Times[i].Hour()
			if h < dayStartHour || h > dayEndHour {
				continue
			}
			daytime = append(daytime, v)
			if v > best {
				best = v
				peakHour = float64(h)
			}
		}
		if len(daytime) == 0 {
			p.logger.Warn("physics model: no daytime observations, column skipped", "column", col)
			p.notes = append(p.notes, fmt.Sprintf("column %s skipped: no daytime observations", col))
			continue
		}

		sort.Float64s(daytime)
		capacity := stat.Quantile(0.95, stat.Empirical, daytime, nil)
		curves[col] = physicsCurve{capacity: capacity, peakHour: peakHour}
	}

	p.curves = curves
	return nil
}

// Notes reports the fit-time column skips.
func (p *PhysicsModel) Notes() []string { return p.notes }

// Interpolate fills each missing cell from the fitted clear-sky curve.
func (p *PhysicsModel) Interpolate(data *timeseries.Frame) (*timeseries.Frame, error) {
	if p.curves == nil {
		return nil, &NotFittedError{Method: p.MethodName()}
	}

	out := data.Clone()
	var filled []string
	for col, curve := range p.curves {
		vals := out.Column(col)
		if vals == nil {
			continue
		}
		for i, v := range vals {
			if !math.IsNaN(v) {
				continue
			}
			vals[i] = curve.at(float64(out.Times[i].Hour()))
		}
		filled = append(filled, col)
	}

	if p.cfg.ApplySolarConstraints {
		ApplySolarConstraints(out, filled, p.cfg.SolarConstraints)
	}
	return out, nil
}

// at evaluates the cosine clear-sky curve at an hour of day. Outside the
// 06:00-18:00 window generation is zero.
func (c physicsCurve) at(hour float64) float64 {
	if hour < dayStartHour || hour > dayEndHour {
		return 0
	}
	return c.capacity * math.Max(0, math.Cos((hour-c.peakHour)*math.Pi/6))
}
