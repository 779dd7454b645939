package ml

import (
	"math"
	"math/rand"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RandomForest is a bagged ensemble of decision trees. Each tree is fitted on
// a bootstrap sample with a seed derived from Seed, so the fitted forest is
// identical across process restarts for the same data.
type RandomForest struct {
	Trees    int
	MaxDepth int
	Seed     int64

	numClasses  int
	numFeatures int
	trees       []*DecisionTree
}

func NewRandomForest(trees, maxDepth int, seed int64) *RandomForest {
	if trees <= 0 {
		trees = 100
	}
	return &RandomForest{Trees: trees, MaxDepth: maxDepth, Seed: seed}
}

func (rf *RandomForest) Fit(X mat.Matrix, y []int) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.New("training matrix is empty")
	}
	if n != len(y) {
		return errors.Newf("matrix has %d rows but %d labels", n, len(y))
	}
	numClasses := 0
	for _, label := range y {
		if label < 0 {
			return errors.Newf("negative class label %d", label)
		}
		if label+1 > numClasses {
			numClasses = label + 1
		}
	}

	features := make([][]float64, n)
	for i := range features {
		features[i] = mat.Row(nil, i, X)
	}

	maxFeatures := int(math.Sqrt(float64(p)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	trees := make([]*DecisionTree, 0, rf.Trees)
	for i := 0; i < rf.Trees; i++ {
		rng := rand.New(rand.NewSource(rf.Seed + int64(i)))
		sampleX, sampleY := bootstrapSample(features, y, rng)
		tree := &DecisionTree{
			MaxDepth:    rf.MaxDepth,
			MaxFeatures: maxFeatures,
			NumClasses:  numClasses,
			rng:         rng,
		}
		if err := tree.Fit(sampleX, sampleY); err != nil {
			return errors.Wrapf(err, "fit tree %d", i)
		}
		trees = append(trees, tree)
	}

	rf.numClasses = numClasses
	rf.numFeatures = p
	rf.trees = trees
	return nil
}

// Predict returns the class with the highest averaged probability. Ties break
// toward the lower class index.
func (rf *RandomForest) Predict(features []float64) (int, error) {
	proba, err := rf.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(proba), nil
}

// PredictProba averages the leaf class distributions of all trees. The result
// has one entry per class, each in [0,1], summing to 1.
func (rf *RandomForest) PredictProba(features []float64) ([]float64, error) {
	if len(rf.trees) == 0 {
		return nil, errors.New("model not fitted")
	}
	if len(features) != rf.numFeatures {
		return nil, errors.Newf("expected %d features, got %d", rf.numFeatures, len(features))
	}

	proba := make([]float64, rf.numClasses)
	for i, tree := range rf.trees {
		dist, err := tree.PredictDist(features)
		if err != nil {
			return nil, errors.Wrapf(err, "tree %d", i)
		}
		floats.Add(proba, dist)
	}
	floats.Scale(1/float64(len(rf.trees)), proba)
	return proba, nil
}

// NumClasses reports the number of classes seen during Fit.
func (rf *RandomForest) NumClasses() int {
	return rf.numClasses
}

func bootstrapSample(features [][]float64, labels []int, rng *rand.Rand) ([][]float64, []int) {
	n := len(features)
	sampleX := make([][]float64, n)
	sampleY := make([]int, n)
	for i := 0; i < n; i++ {
		idx := rng.Intn(n)
		sampleX[i] = features[idx]
		sampleY[i] = labels[idx]
	}
	return sampleX, sampleY
}
