package interpolate

import (
	"math"
	"math/rand"
	"sort"

	"github.com/AsobaCloud/platform/internal/recommend"
)

// gbrt is a least-squares gradient-boosted regression tree ensemble. Each
// boosting round fits a depth-limited regression tree to the current
// residuals on a seeded random subset of features, so training is
// deterministic for a fixed RandomState.
type gbrt struct {
	base  float64
	trees []*treeNode
	lr    float64
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// minSplitSamples is the smallest node the tree builder will try to split.
const minSplitSamples = 4

// trainGBRT fits the ensemble on a row-major feature matrix.
func trainGBRT(features [][]float64, targets []float64, params recommend.ModelParameters) *gbrt {
	model := &gbrt{lr: params.LearningRate}
	n := len(targets)
	if n == 0 {
		return model
	}

	sum := 0.0
	for _, y := range targets {
		sum += y
	}
	model.base = sum / float64(n)

	residuals := make([]float64, n)
	pred := make([]float64, n)
	for i := range pred {
		pred[i] = model.base
	}

	rng := rand.New(rand.NewSource(params.RandomState))
	nFeatures := len(features[0])
	subset := int(math.Ceil(params.FeatureFraction * float64(nFeatures)))
	if subset < 1 {
		subset = 1
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	for round := 0; round < params.NEstimators; round++ {
		for i := range residuals {
			residuals[i] = targets[i] - pred[i]
		}
		candidates := sampleFeatures(rng, nFeatures, subset)
		tree := buildTree(features, residuals, indices, candidates, params.MaxDepth)
		model.trees = append(model.trees, tree)
		for i := range pred {
			pred[i] += model.lr * tree.predict(features[i])
		}
	}
	return model
}

// predict evaluates the ensemble on one feature vector.
func (m *gbrt) predict(x []float64) float64 {
	out := m.base
	for _, tree := range m.trees {
		out += m.lr * tree.predict(x)
	}
	return out
}

func (t *treeNode) predict(x []float64) float64 {
	for !t.leaf {
		if x[t.feature] <= t.threshold {
			t = t.left
		} else {
			t = t.right
		}
	}
	return t.value
}

// sampleFeatures draws a sorted sample of feature indices without
// replacement.
func sampleFeatures(rng *rand.Rand, nFeatures, k int) []int {
	if k >= nFeatures {
		all := make([]int, nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := rng.Perm(nFeatures)[:k]
	sort.Ints(perm)
	return perm
}

// buildTree grows a regression tree on the rows in idx, splitting greedily
// by squared-error reduction over the candidate features.
func buildTree(features [][]float64, residuals []float64, idx, candidates []int, depth int) *treeNode {
	mean := meanAt(residuals, idx)
	if depth == 0 || len(idx) < minSplitSamples {
		return &treeNode{leaf: true, value: mean}
	}

	bestFeature, bestThreshold, bestScore := -1, 0.0, math.Inf(1)
	var bestLeft, bestRight []int

	for _, f := range candidates {
		ordered := append([]int(nil), idx...)
		sort.Slice(ordered, func(a, b int) bool {
			return features[ordered[a]][f] < features[ordered[b]][f]
		})

		// Prefix sums over the sorted order give every split's SSE in one
		// pass.
		var sumL, sqL float64
		sumT, sqT := 0.0, 0.0
		for _, i := range ordered {
			sumT += residuals[i]
			sqT += residuals[i] * residuals[i]
		}
		for pos := 0; pos < len(ordered)-1; pos++ {
			r := residuals[ordered[pos]]
			sumL += r
			sqL += r * r
			if features[ordered[pos]][f] == features[ordered[pos+1]][f] {
				continue
			}
			nl := float64(pos + 1)
			nr := float64(len(ordered) - pos - 1)
			sseL := sqL - sumL*sumL/nl
			sumR := sumT - sumL
			sseR := (sqT - sqL) - sumR*sumR/nr
			score := sseL + sseR
			if score < bestScore {
				bestScore = score
				bestFeature = f
				bestThreshold = (features[ordered[pos]][f] + features[ordered[pos+1]][f]) / 2
				bestLeft = append(bestLeft[:0], ordered[:pos+1]...)
				bestRight = append(bestRight[:0], ordered[pos+1:]...)
			}
		}
	}

	if bestFeature < 0 {
		return &treeNode{leaf: true, value: mean}
	}
	left := append([]int(nil), bestLeft...)
	right := append([]int(nil), bestRight...)
	return &treeNode{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      buildTree(features, residuals, left, candidates, depth-1),
		right:     buildTree(features, residuals, right, candidates, depth-1),
	}
}

func meanAt(vals []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += vals[i]
	}
	return sum / float64(len(idx))
}
