package interpolate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsobaCloud/platform/internal/recommend"
)

func gbrtParams() recommend.ModelParameters {
	p := recommend.DefaultModelParameters()
	p.NEstimators = 50 // enough for the simple fixtures here
	return p
}

func TestGBRTLearnsStepFunction(t *testing.T) {
	var x [][]float64
	var y []float64
	for i := 0; i < 200; i++ {
		v := float64(i)
		x = append(x, []float64{v})
		if i < 100 {
			y = append(y, 10)
		} else {
			y = append(y, 50)
		}
	}

	model := trainGBRT(x, y, gbrtParams())

	assert.InDelta(t, 10, model.predict([]float64{20}), 2)
	assert.InDelta(t, 50, model.predict([]float64{180}), 2)
}

func TestGBRTLearnsLinearTrend(t *testing.T) {
	var x [][]float64
	var y []float64
	for i := 0; i < 300; i++ {
		x = append(x, []float64{float64(i), float64(i % 7)})
		y = append(y, 3*float64(i))
	}

	model := trainGBRT(x, y, gbrtParams())

	var sumAbs float64
	for i := 50; i < 250; i++ {
		sumAbs += math.Abs(model.predict(x[i]) - y[i])
	}
	mae := sumAbs / 200
	assert.Less(t, mae, 30.0, "interior fit of y=3x must be close")
}

func TestGBRTDeterministicForFixedSeed(t *testing.T) {
	var x [][]float64
	var y []float64
	for i := 0; i < 150; i++ {
		x = append(x, []float64{float64(i), float64(i * i % 13), float64(i % 5)})
		y = append(y, float64(i%24)*100)
	}

	params := gbrtParams()
	first := trainGBRT(x, y, params)
	second := trainGBRT(x, y, params)

	for i := 0; i < len(x); i += 17 {
		require.Equal(t, first.predict(x[i]), second.predict(x[i]),
			"same seed must give identical predictions")
	}
}

func TestGBRTEmptyTrainingSet(t *testing.T) {
	model := trainGBRT(nil, nil, gbrtParams())
	assert.Zero(t, model.predict([]float64{1, 2, 3}))
}
