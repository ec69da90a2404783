package interpolate

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/AsobaCloud/platform/internal/recommend"
	"github.com/AsobaCloud/platform/internal/timeseries"
)

// GaussianProcess fills gaps with a Gaussian-process regression per column
// over six cyclic time features. The kernel is a product of an RBF and a
// Matern 3/2 term plus white noise, evaluated on features min-max scaled to
// the unit interval. Only the posterior mean is used for filling.
type GaussianProcess struct {
	cfg     recommend.MethodConfiguration
	logger  *slog.Logger
	models  map[string]*gpModel
	scalers []columnScaler
	notes   []string
}

type columnScaler struct {
	column string
	scaler *featureScaler
}

type gpModel struct {
	train *mat.Dense // scaled training features, one row per point
	alpha *mat.VecDense
	yMean float64
}

const (
	// Minimum observed points to fit a column.
	minGPTrainPoints = 10
	// Training set cap; larger columns are subsampled evenly to keep the
	// O(n^3) Cholesky factorization tractable.
	maxGPTrainPoints = 1000

	rbfLengthScale    = 10.0
	maternLengthScale = 5.0
	whiteNoise        = 1e-2
	choleskyJitter    = 1e-6
)

// NewGaussianProcess creates the Gaussian-process strategy.
func NewGaussianProcess(cfg recommend.MethodConfiguration, logger *slog.Logger) *GaussianProcess {
	if logger == nil {
		logger = slog.Default()
	}
	return &GaussianProcess{cfg: cfg, logger: logger}
}

// MethodName implements Strategy.
func (g *GaussianProcess) MethodName() string { return recommend.MethodGaussianProcess }

// featureScaler min-max scales features to [0,1] using the ranges observed
// at fit time. Constant features map to 0.
type featureScaler struct {
	min, max []float64
}

func fitScaler(fs *FeatureSet, rows []int) *featureScaler {
	nf := fs.NumFeatures()
	sc := &featureScaler{
		min: make([]float64, nf),
		max: make([]float64, nf),
	}
	for j := 0; j < nf; j++ {
		col := fs.Column(j)
		mn, mx := math.Inf(1), math.Inf(-1)
		for _, i := range rows {
			if col[i] < mn {
				mn = col[i]
			}
			if col[i] > mx {
				mx = col[i]
			}
		}
		sc.min[j], sc.max[j] = mn, mx
	}
	return sc
}

func (sc *featureScaler) scale(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		span := sc.max[j] - sc.min[j]
		if span > 0 {
			out[j] = (v - sc.min[j]) / span
		}
	}
	return out
}

// Fit trains one GP per column on its observed rows. Columns with fewer
// than ten observations are skipped with a warning.
func (g *GaussianProcess) Fit(data *timeseries.Frame, columns []string, _ *timeseries.WeatherFrame) error {
	features := TimeFeatures(data.Times)
	models := make(map[string]*gpModel, len(columns))
	g.scalers = nil
	g.notes = nil

	for _, col := range columns {
		vals := data.Column(col)
		if vals == nil {
			continue
		}
		var rows []int
		for i, v := range vals {
			if !math.IsNaN(v) {
				rows = append(rows, i)
			}
		}
		if len(rows) < minGPTrainPoints {
			g.logger.Warn("gaussian process: too few observations, column skipped",
				"column", col, "observations", len(rows))
			g.notes = append(g.notes, fmt.Sprintf("column %s skipped: %d observations", col, len(rows)))
			continue
		}
		rows = subsample(rows, maxGPTrainPoints)

		scaler := fitScaler(features, rows)
		n := len(rows)
		train := mat.NewDense(n, features.NumFeatures(), nil)
		y := make([]float64, n)
		yMean := 0.0
		for i, r := range rows {
			train.SetRow(i, scaler.scale(features.Row(r)))
			y[i] = vals[r]
			yMean += vals[r]
		}
		yMean /= float64(n)

		k := mat.NewSymDense(n, nil)
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				v := kernel(train.RawRowView(i), train.RawRowView(j))
				if i == j {
					v += whiteNoise + choleskyJitter
				}
				k.SetSym(i, j, v)
			}
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(k); !ok {
			return fmt.Errorf("gaussian process: kernel matrix for %s is not positive definite", col)
		}
		centered := mat.NewVecDense(n, nil)
		for i := range y {
			centered.SetVec(i, y[i]-yMean)
		}
		alpha := mat.NewVecDense(n, nil)
		if err := chol.SolveVecTo(alpha, centered); err != nil {
			return fmt.Errorf("gaussian process: solve for %s: %w", col, err)
		}

		models[col] = &gpModel{train: train, alpha: alpha, yMean: yMean}
		g.scalers = append(g.scalers, columnScaler{column: col, scaler: scaler})
	}

	g.models = models
	return nil
}

// Notes reports the fit-time column skips.
func (g *GaussianProcess) Notes() []string { return g.notes }

// Interpolate predicts the posterior mean at every missing row of each
// fitted column.
func (g *GaussianProcess) Interpolate(data *timeseries.Frame) (*timeseries.Frame, error) {
	if g.models == nil {
		return nil, &NotFittedError{Method: g.MethodName()}
	}

	out := data.Clone()
	features := TimeFeatures(out.Times)
	var filled []string
	for col, model := range g.models {
		vals := out.Column(col)
		if vals == nil {
			continue
		}
		scaler := g.scalerFor(col)
		if scaler == nil {
			continue
		}
		n, _ := model.train.Dims()
		for i, v := range vals {
			if !math.IsNaN(v) {
				continue
			}
			x := scaler.scale(features.Row(i))
			pred := model.yMean
			for t := 0; t < n; t++ {
				pred += kernel(x, model.train.RawRowView(t)) * model.alpha.AtVec(t)
			}
			vals[i] = pred
		}
		filled = append(filled, col)
	}

	if g.cfg.ApplySolarConstraints {
		ApplySolarConstraints(out, filled, g.cfg.SolarConstraints)
	}
	return out, nil
}

func (g *GaussianProcess) scalerFor(col string) *featureScaler {
	for _, cs := range g.scalers {
		if cs.column == col {
			return cs.scaler
		}
	}
	return nil
}

// kernel is RBF(l=10) * Matern32(l=5) on scaled features; the white-noise
// term is added on the training diagonal only.
func kernel(a, b []float64) float64 {
	var sq float64
	for i := range a {
		d := a[i] - b[i]
		sq += d * d
	}
	r := math.Sqrt(sq)

	rbf := math.Exp(-sq / (2 * rbfLengthScale * rbfLengthScale))
	s := math.Sqrt(3) * r / maternLengthScale
	matern := (1 + s) * math.Exp(-s)
	return rbf * matern
}

// subsample keeps at most max indices, spaced evenly over the input.
func subsample(rows []int, max int) []int {
	if len(rows) <= max {
		return rows
	}
	out := make([]int, 0, max)
	step := float64(len(rows)) / float64(max)
	for i := 0; i < max; i++ {
		out = append(out, rows[int(float64(i)*step)])
	}
	return out
}
