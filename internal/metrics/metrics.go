// Package metrics computes interpolation accuracy metrics between true and
// predicted series. All calculations pair up only the indices where both
// values are finite, so partially missing validation slices work without
// pre-filtering.
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Result holds the accuracy metrics for one evaluated series.
type Result struct {
	MAE         float64 `json:"mae"`
	MSE         float64 `json:"mse"`
	RMSE        float64 `json:"rmse"`
	R2          float64 `json:"r2"`
	SMAPE       float64 `json:"smape"`
	MAPE        float64 `json:"mape"`
	NRMSE       float64 `json:"nrmse"`
	MBE         float64 `json:"mbe"`
	Correlation float64 `json:"correlation"`
	ValidPoints int     `json:"valid_points"`
	Note        string  `json:"note,omitempty"`
}

// ErrLengthMismatch reports series of different lengths handed to Calculate.
type ErrLengthMismatch struct {
	TrueLen, PredLen int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("metrics: series length mismatch: true=%d pred=%d", e.TrueLen, e.PredLen)
}

// Calculate computes the full metric set over the finite pairs of yTrue and
// yPred. When no valid pairs exist the result carries a note instead of
// numbers, so callers can aggregate without special-casing empty columns.
func Calculate(yTrue, yPred []float64) (Result, error) {
	if len(yTrue) != len(yPred) {
		return Result{}, &ErrLengthMismatch{TrueLen: len(yTrue), PredLen: len(yPred)}
	}

	var t, p []float64
	for i := range yTrue {
		if isFinite(yTrue[i]) && isFinite(yPred[i]) {
			t = append(t, yTrue[i])
			p = append(p, yPred[i])
		}
	}
	if len(t) == 0 {
		return Result{Note: "no valid points"}, nil
	}

	n := float64(len(t))
	var sumAbs, sumSq, sumErr float64
	for i := range t {
		diff := p[i] - t[i]
		sumAbs += math.Abs(diff)
		sumSq += diff * diff
		sumErr += diff
	}

	res := Result{
		MAE:         sumAbs / n,
		MSE:         sumSq / n,
		MBE:         sumErr / n,
		ValidPoints: len(t),
	}
	res.RMSE = math.Sqrt(res.MSE)
	res.R2 = rSquared(t, p)
	res.SMAPE = smape(t, p)
	res.MAPE = mape(t, p)
	res.NRMSE = nrmse(t, res.RMSE)
	res.Correlation = correlation(t, p)
	return res, nil
}

// rSquared is the coefficient of determination. A constant true series has
// zero total variance; a perfect fit then scores 1 and anything else 0.
func rSquared(t, p []float64) float64 {
	mean := stat.Mean(t, nil)
	var ssRes, ssTot float64
	for i := range t {
		ssRes += (t[i] - p[i]) * (t[i] - p[i])
		ssTot += (t[i] - mean) * (t[i] - mean)
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// epsilon is the magnitude below which a denominator counts as zero for the
// percentage metrics.
const epsilon = 1e-8

// smape is the symmetric mean absolute percentage error. Pairs whose
// combined magnitude is below epsilon are excluded rather than divided by
// near-zero.
func smape(t, p []float64) float64 {
	var sum float64
	count := 0
	for i := range t {
		denom := (math.Abs(t[i]) + math.Abs(p[i])) / 2
		if denom < epsilon {
			continue
		}
		sum += math.Abs(p[i]-t[i]) / denom
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) * 100
}

// mape divides by the true value; targets within epsilon of zero are
// excluded rather than divided by. Zero evaluable points yields 0.
func mape(t, p []float64) float64 {
	var sum float64
	count := 0
	for i := range t {
		if math.Abs(t[i]) <= epsilon {
			continue
		}
		pct := math.Abs((p[i] - t[i]) / t[i])
		if !isFinite(pct) {
			pct = 1
		}
		sum += pct
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) * 100
}

// nrmse normalizes RMSE by the range of the true series, as a percentage;
// a flat series yields 0.
func nrmse(t []float64, rmse float64) float64 {
	min, max := t[0], t[0]
	for _, v := range t {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		return 0
	}
	return rmse / (max - min) * 100
}

// correlation is the Pearson coefficient, 0 when fewer than two points or
// when either series is constant.
func correlation(t, p []float64) float64 {
	if len(t) < 2 {
		return 0
	}
	r := stat.Correlation(t, p, nil)
	if !isFinite(r) {
		return 0
	}
	return r
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
