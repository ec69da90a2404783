package interpolate

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/AsobaCloud/platform/internal/metrics"
	"github.com/AsobaCloud/platform/internal/recommend"
	"github.com/AsobaCloud/platform/internal/timeseries"
)

const (
	// Complete rows needed before validation masking is meaningful.
	minValidationRows = 20
	// At least this many rows are masked, rising to 15% of the complete
	// rows for larger datasets.
	minMaskedRows = 10
	maskFraction  = 0.15
	// Fixed seed so a rerun masks the same rows and reports the same
	// metrics.
	maskSeed = 42
)

// AverageMetrics is the unweighted mean of the headline metrics over the
// evaluated columns.
type AverageMetrics struct {
	MAE         float64 `json:"mae"`
	RMSE        float64 `json:"rmse"`
	R2          float64 `json:"r2"`
	SMAPE       float64 `json:"smape"`
	MAPE        float64 `json:"mape"`
	Correlation float64 `json:"correlation"`
}

// ValidationResult holds the masked-row evaluation of one strategy.
type ValidationResult struct {
	MaskedRows int                       `json:"masked_rows"`
	PerColumn  map[string]metrics.Result `json:"per_column"`
	Average    AverageMetrics            `json:"average"`
}

// validate masks a deterministic subset of complete rows, refits the
// strategy on the masked frame and scores its reconstructions. A dataset
// with too few complete rows skips validation with a reason instead of
// failing the run.
func (e *Engine) validate(ctx context.Context, data *timeseries.Frame, columns []string, weather *timeseries.WeatherFrame, method string, cfg recommend.MethodConfiguration) (*ValidationResult, string, error) {
	complete := data.CompleteRows(columns)
	if len(complete) < minValidationRows {
		e.logger.Warn("validation skipped: too few complete rows",
			"complete_rows", len(complete), "required", minValidationRows)
		return nil, "too few complete rows for validation masking", nil
	}

	k := int(math.Ceil(maskFraction * float64(len(complete))))
	if k < minMaskedRows {
		k = minMaskedRows
	}
	if k > len(complete) {
		k = len(complete)
	}

	rng := rand.New(rand.NewSource(maskSeed))
	perm := rng.Perm(len(complete))[:k]
	masked := make([]int, k)
	for i, p := range perm {
		masked[i] = complete[p]
	}
	sort.Ints(masked)

	maskedFrame := data.Clone()
	for _, row := range masked {
		for _, col := range columns {
			maskedFrame.SetValue(row, col, math.NaN())
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	strategy, err := newStrategy(method, cfg, e.logger)
	if err != nil {
		return nil, "", err
	}
	if err := strategy.Fit(maskedFrame, columns, weather); err != nil {
		return nil, "", err
	}
	filled, err := strategy.Interpolate(maskedFrame)
	if err != nil {
		return nil, "", err
	}

	result := &ValidationResult{
		MaskedRows: k,
		PerColumn:  make(map[string]metrics.Result, len(columns)),
	}

	evaluated := 0
	for _, col := range columns {
		yTrue := make([]float64, k)
		yPred := make([]float64, k)
		for i, row := range masked {
			yTrue[i] = data.Value(row, col)
			yPred[i] = filled.Value(row, col)
		}
		m, err := metrics.Calculate(yTrue, yPred)
		if err != nil {
			return nil, "", err
		}
		result.PerColumn[col] = m
		if m.ValidPoints == 0 {
			continue
		}
		result.Average.MAE += m.MAE
		result.Average.RMSE += m.RMSE
		result.Average.R2 += m.R2
		result.Average.SMAPE += m.SMAPE
		result.Average.MAPE += m.MAPE
		result.Average.Correlation += m.Correlation
		evaluated++
	}
	if evaluated > 0 {
		n := float64(evaluated)
		result.Average.MAE /= n
		result.Average.RMSE /= n
		result.Average.R2 /= n
		result.Average.SMAPE /= n
		result.Average.MAPE /= n
		result.Average.Correlation /= n
	}

	e.logger.Info("validation pass complete",
		"masked_rows", k,
		"columns_evaluated", evaluated,
		"avg_mae", result.Average.MAE,
		"avg_r2", result.Average.R2,
	)
	return result, "", nil
}
