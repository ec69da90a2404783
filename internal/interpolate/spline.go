package interpolate

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/AsobaCloud/platform/internal/recommend"
	"github.com/AsobaCloud/platform/internal/timeseries"
)

// Spline fills gaps with a natural cubic spline fitted per column over the
// observed points. Columns with fewer than four observations are left
// unfilled. Outside the observed time range the prediction is clamped to
// the boundary value.
type Spline struct {
	cfg    recommend.MethodConfiguration
	logger *slog.Logger
	models map[string]splineModel
	notes  []string
}

type splineModel struct {
	predictor  interp.Predictor
	xMin, xMax float64
}

// minCubicPoints is the observation count below which a column is skipped.
const minCubicPoints = 4

// NewSpline creates the cubic-spline strategy.
func NewSpline(cfg recommend.MethodConfiguration, logger *slog.Logger) *Spline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Spline{cfg: cfg, logger: logger}
}

// MethodName implements Strategy.
func (s *Spline) MethodName() string { return recommend.MethodSpline }

// Fit fits one spline per column over its non-missing points. Columns with
// fewer than four observations are skipped and left unfilled.
func (s *Spline) Fit(data *timeseries.Frame, columns []string, _ *timeseries.WeatherFrame) error {
	xs := data.NumericTimes()
	models := make(map[string]splineModel, len(columns))
	s.notes = nil

	for _, col := range columns {
		vals := data.Column(col)
		if vals == nil {
			continue
		}
		var kx, ky []float64
		for i, v := range vals {
			if !math.IsNaN(v) {
				kx = append(kx, xs[i])
				ky = append(ky, v)
			}
		}
		if len(kx) < minCubicPoints {
			s.logger.Warn("spline: too few observations, column skipped",
				"column", col, "observations", len(kx))
			s.notes = append(s.notes, fmt.Sprintf("column %s skipped: %d observations", col, len(kx)))
			continue
		}

		nc := &interp.NaturalCubic{}
		if err := nc.Fit(kx, ky); err != nil {
			return err
		}
		models[col] = splineModel{predictor: nc, xMin: kx[0], xMax: kx[len(kx)-1]}
	}

	s.models = models
	return nil
}

// Notes reports the fit-time column skips.
func (s *Spline) Notes() []string { return s.notes }

// Interpolate fills the missing cells of every fitted column and applies
// the solar constraints when configured.
func (s *Spline) Interpolate(data *timeseries.Frame) (*timeseries.Frame, error) {
	if s.models == nil {
		return nil, &NotFittedError{Method: s.MethodName()}
	}

	out := data.Clone()
	xs := out.NumericTimes()
	var filled []string
	for col, model := range s.models {
		vals := out.Column(col)
		if vals == nil {
			continue
		}
		for i, v := range vals {
			if !math.IsNaN(v) {
				continue
			}
			x := xs[i]
			if x < model.xMin {
				x = model.xMin
			}
			if x > model.xMax {
				x = model.xMax
			}
			vals[i] = model.predictor.Predict(x)
		}
		filled = append(filled, col)
	}

	if s.cfg.ApplySolarConstraints {
		ApplySolarConstraints(out, filled, s.cfg.SolarConstraints)
	}
	return out, nil
}
