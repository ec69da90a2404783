package interpolate

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/AsobaCloud/platform/internal/recommend"
	"github.com/AsobaCloud/platform/internal/timeseries"
)

// moMode selects how the multi-output strategy structures its models. The
// mode is decided once at fit time from the configuration and the amount of
// training data available.
type moMode int

const (
	// One model per column, with leakage-safe features derived from the
	// other columns' history.
	modePerColumnCorrelated moMode = iota
	// One model per column on time and weather features only.
	modePerColumnIndependent
	// A single model over all columns, with the column index as a feature.
	modeSingleJoint
)

// MultiOutput fills gaps with gradient-boosted regression trees over time,
// weather and cross-equipment features. When no column has enough training
// data the strategy falls back to cubic splines for the whole frame.
type MultiOutput struct {
	cfg    recommend.MethodConfiguration
	logger *slog.Logger

	mode     moMode
	columns  []string
	weather  *timeseries.WeatherFrame
	models   map[string]*gbrt
	joint    *gbrt
	corr     map[string]map[string]float64
	fallback *Spline
	fitted   bool
	notes    []string
}

const (
	// Complete rows needed before cross-equipment correlation features are
	// trustworthy.
	minCorrelatedRows = 50
	// Observed rows a column needs for its own independent model, and the
	// floor for the joint model's stacked training set.
	minIndependentRows = 100
)

// NewMultiOutput creates the multi-output regression strategy.
func NewMultiOutput(cfg recommend.MethodConfiguration, logger *slog.Logger) *MultiOutput {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiOutput{cfg: cfg, logger: logger}
}

// MethodName implements Strategy.
func (m *MultiOutput) MethodName() string { return recommend.MethodMultiOutput }

// Fit selects a mode and trains the tree models. Columns that cannot meet
// the training-data floor are skipped; if nothing is trainable the whole
// strategy degrades to splines.
func (m *MultiOutput) Fit(data *timeseries.Frame, columns []string, weather *timeseries.WeatherFrame) error {
	m.columns = append([]string(nil), columns...)
	m.models = make(map[string]*gbrt)
	m.joint = nil
	m.fallback = nil
	m.corr = make(map[string]map[string]float64)
	m.weather = weather
	m.notes = nil

	base := buildBaseFeatures(data, weather)
	complete := data.CompleteRows(columns)

	switch {
	case m.cfg.UseEquipmentCorrelation && len(columns) > 1 && len(complete) >= minCorrelatedRows:
		m.mode = modePerColumnCorrelated
		m.fitCorrelated(data, base, complete)
	case m.cfg.ModelEquipmentIndependently:
		m.mode = modePerColumnIndependent
		m.fitIndependent(data, base)
	default:
		m.mode = modeSingleJoint
		m.fitJoint(data, base)
	}

	if len(m.models) == 0 && m.joint == nil {
		m.logger.Warn("multi-output regression: no trainable columns, falling back to splines")
		m.notes = append(m.notes, "no trainable columns, falling back to splines")
		m.fallback = NewSpline(m.cfg, m.logger)
		if err := m.fallback.Fit(data, columns, weather); err != nil {
			return err
		}
		m.notes = append(m.notes, m.fallback.Notes()...)
	}

	m.fitted = true
	return nil
}

// Notes reports the fit-time column skips and fallback decisions.
func (m *MultiOutput) Notes() []string { return m.notes }

func (m *MultiOutput) fitCorrelated(data *timeseries.Frame, base *FeatureSet, complete []int) {
	for _, target := range m.columns {
		others := otherColumns(m.columns, target)
		m.corr[target] = trainCorrelations(data, target, others, complete)

		features := mergeFeatures(base, correlationFeatures(data, target, others, m.corr[target]))
		rows := observedRows(data, target)
		if len(rows) < minCorrelatedRows {
			m.logger.Warn("multi-output regression: too few observations, column skipped",
				"column", target, "observations", len(rows))
			m.notes = append(m.notes, fmt.Sprintf("column %s skipped: %d observations", target, len(rows)))
			continue
		}

		x, y := trainingSet(features, data.Column(target), rows)
		m.models[target] = trainGBRT(x, y, m.cfg.Parameters)
	}
}

func (m *MultiOutput) fitIndependent(data *timeseries.Frame, base *FeatureSet) {
	for _, target := range m.columns {
		rows := observedRows(data, target)
		if len(rows) < minIndependentRows {
			m.logger.Warn("multi-output regression: too few observations, column skipped",
				"column", target, "observations", len(rows))
			m.notes = append(m.notes, fmt.Sprintf("column %s skipped: %d observations", target, len(rows)))
			continue
		}
		x, y := trainingSet(base, data.Column(target), rows)
		m.models[target] = trainGBRT(x, y, m.cfg.Parameters)
	}
}

func (m *MultiOutput) fitJoint(data *timeseries.Frame, base *FeatureSet) {
	var x [][]float64
	var y []float64
	for ci, col := range m.columns {
		vals := data.Column(col)
		if vals == nil {
			continue
		}
		for i, v := range vals {
			if math.IsNaN(v) {
				continue
			}
			row := append(base.Row(i), float64(ci))
			x = append(x, row)
			y = append(y, v)
		}
	}
	if len(y) < minIndependentRows {
		m.logger.Warn("multi-output regression: too few observations for joint model",
			"observations", len(y))
		return
	}
	m.joint = trainGBRT(x, y, m.cfg.Parameters)
}

// Interpolate predicts every missing cell with the mode chosen at fit time.
func (m *MultiOutput) Interpolate(data *timeseries.Frame) (*timeseries.Frame, error) {
	if !m.fitted {
		return nil, &NotFittedError{Method: m.MethodName()}
	}
	if m.fallback != nil {
		return m.fallback.Interpolate(data)
	}

	out := data.Clone()
	base := buildBaseFeatures(out, m.weather)
	var filled []string

	switch m.mode {
	case modePerColumnCorrelated:
		for _, target := range m.columns {
			model, ok := m.models[target]
			if !ok {
				continue
			}
			others := otherColumns(m.columns, target)
			features := mergeFeatures(base, correlationFeatures(data, target, others, m.corr[target]))
			fillColumn(out, target, features, model)
			filled = append(filled, target)
		}
	case modePerColumnIndependent:
		for _, target := range m.columns {
			model, ok := m.models[target]
			if !ok {
				continue
			}
			fillColumn(out, target, base, model)
			filled = append(filled, target)
		}
	case modeSingleJoint:
		if m.joint == nil {
			break
		}
		for ci, col := range m.columns {
			vals := out.Column(col)
			if vals == nil {
				continue
			}
			for i, v := range vals {
				if math.IsNaN(v) {
					vals[i] = m.joint.predict(append(base.Row(i), float64(ci)))
				}
			}
			filled = append(filled, col)
		}
	}

	if m.cfg.ApplySolarConstraints {
		ApplySolarConstraints(out, filled, m.cfg.SolarConstraints)
	}
	return out, nil
}

// buildBaseFeatures combines calendar and weather features. The fit-time
// weather frame is reused at predict time so the feature layout stays
// identical across both passes.
func buildBaseFeatures(data *timeseries.Frame, weather *timeseries.WeatherFrame) *FeatureSet {
	fs := ExtendedTimeFeatures(data.Times)
	if weather != nil {
		fs = mergeFeatures(fs, WeatherFeatures(data.Times, weather))
	}
	return fs
}

func mergeFeatures(a, b *FeatureSet) *FeatureSet {
	out := NewFeatureSet(a.Len())
	for j, name := range a.Names {
		out.Add(name, a.Column(j))
	}
	for j, name := range b.Names {
		out.Add(name, b.Column(j))
	}
	return out
}

// correlationFeatures derives leakage-safe cross-equipment features for one
// target column: lags, shifted rolling statistics and availability of every
// other column, plus the fit-time correlation strength. Only values strictly
// before the current row enter any feature, so a masked validation row can
// never see itself.
func correlationFeatures(frame *timeseries.Frame, target string, others []string, corr map[string]float64) *FeatureSet {
	n := frame.Len()
	fs := NewFeatureSet(n)

	for _, o := range others {
		series := frame.Column(o)
		if series == nil {
			continue
		}

		for _, k := range []int{1, 2, 3} {
			fs.Add(o+lagSuffix(k), sanitizedLag(series, k))
		}

		mean6, std6 := shiftedRolling6(series)
		fs.Add(o+"_roll6_mean", mean6)
		fs.Add(o+"_roll6_std", std6)

		avail := make([]float64, n)
		for i, v := range series {
			if !math.IsNaN(v) {
				avail[i] = 1
			}
		}
		fs.Add(o+"_available", avail)
		fs.Add(o+"_available_lag1", lag(avail, 1))

		strength := make([]float64, n)
		for i := range strength {
			strength[i] = corr[o]
		}
		fs.Add(o+"_corr_strength", strength)
	}
	return fs
}

func lagSuffix(k int) string {
	switch k {
	case 1:
		return "_lag1"
	case 2:
		return "_lag2"
	default:
		return "_lag3"
	}
}

// sanitizedLag lags a series and zeroes cells where the lagged value is
// missing.
func sanitizedLag(series []float64, k int) []float64 {
	out := make([]float64, len(series))
	for i := range series {
		j := i - k
		if j < 0 || math.IsNaN(series[j]) {
			out[i] = 0
			continue
		}
		out[i] = series[j]
	}
	return out
}

// shiftedRolling6 computes mean and population std over the six rows
// strictly before each row, ignoring missing values.
func shiftedRolling6(series []float64) (mean, std []float64) {
	n := len(series)
	mean = make([]float64, n)
	std = make([]float64, n)
	for i := 0; i < n; i++ {
		lo := i - 6
		if lo < 0 {
			lo = 0
		}
		var window []float64
		for j := lo; j < i; j++ {
			if !math.IsNaN(series[j]) {
				window = append(window, series[j])
			}
		}
		if len(window) == 0 {
			continue
		}
		mean[i] = stat.Mean(window, nil)
		std[i] = stat.PopStdDev(window, nil)
	}
	return mean, std
}

// trainCorrelations computes Pearson correlation between the target and each
// other column over the complete rows.
func trainCorrelations(frame *timeseries.Frame, target string, others []string, complete []int) map[string]float64 {
	out := make(map[string]float64, len(others))
	tVals := frame.Column(target)
	for _, o := range others {
		oVals := frame.Column(o)
		if tVals == nil || oVals == nil || len(complete) < 2 {
			out[o] = 0
			continue
		}
		a := make([]float64, len(complete))
		b := make([]float64, len(complete))
		for i, r := range complete {
			a[i] = tVals[r]
			b[i] = oVals[r]
		}
		r := stat.Correlation(a, b, nil)
		if math.IsNaN(r) {
			r = 0
		}
		out[o] = r
	}
	return out
}

func otherColumns(columns []string, target string) []string {
	out := make([]string, 0, len(columns)-1)
	for _, c := range columns {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}

func observedRows(frame *timeseries.Frame, column string) []int {
	vals := frame.Column(column)
	var rows []int
	for i, v := range vals {
		if !math.IsNaN(v) {
			rows = append(rows, i)
		}
	}
	return rows
}

func trainingSet(features *FeatureSet, targets []float64, rows []int) ([][]float64, []float64) {
	x := make([][]float64, 0, len(rows))
	y := make([]float64, 0, len(rows))
	for _, r := range rows {
		x = append(x, features.Row(r))
		y = append(y, targets[r])
	}
	return x, y
}

func fillColumn(frame *timeseries.Frame, column string, features *FeatureSet, model *gbrt) {
	vals := frame.Column(column)
	if vals == nil {
		return
	}
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = model.predict(features.Row(i))
		}
	}
}
