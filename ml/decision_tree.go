package ml

import (
	"math"
	"math/rand"
	"sort"

	"github.com/cockroachdb/errors"
)

type DecisionTree struct {
	MaxDepth    int
	MaxFeatures int
	NumClasses  int

	rng   *rand.Rand
	nodes []treeNode
}

type treeNode struct {
	featureIdx int
	threshold  float64
	left       int
	right      int
	dist       []float64
	leaf       bool
}

func (dt *DecisionTree) Fit(features [][]float64, labels []int) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	if dt.NumClasses <= 0 {
		return errors.New("NumClasses must be positive")
	}
	if dt.MaxDepth <= 0 {
		dt.MaxDepth = 10
	}

	dt.nodes = dt.buildNode(features, labels, 0)
	return nil
}

// PredictDist walks the tree and returns the class distribution of the leaf
// the sample lands in.
func (dt *DecisionTree) PredictDist(features []float64) ([]float64, error) {
	if len(dt.nodes) == 0 {
		return nil, errors.New("model not trained")
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.leaf {
			return node.dist, nil
		}
		if node.featureIdx < 0 || node.featureIdx >= len(features) {
			return nil, errors.Newf("feature index %d out of range", node.featureIdx)
		}
		if features[node.featureIdx] <= node.threshold {
			idx = node.left
		} else {
			idx = node.right
		}
		if idx < 0 || idx >= len(dt.nodes) {
			return nil, errors.New("invalid tree state")
		}
	}
}

func (dt *DecisionTree) buildNode(features [][]float64, labels []int, depth int) []treeNode {
	if depth >= dt.MaxDepth || isPure(labels) {
		return []treeNode{dt.leafNode(labels)}
	}

	bestFeature, threshold, ok := dt.findBestSplit(features, labels)
	if !ok {
		return []treeNode{dt.leafNode(labels)}
	}

	leftFeatures, leftLabels, rightFeatures, rightLabels := splitData(features, labels, bestFeature, threshold)
	if len(leftLabels) == 0 || len(rightLabels) == 0 {
		return []treeNode{dt.leafNode(labels)}
	}

	leftNodes := dt.buildNode(leftFeatures, leftLabels, depth+1)
	rightNodes := dt.buildNode(rightFeatures, rightLabels, depth+1)

	root := treeNode{
		featureIdx: bestFeature,
		threshold:  threshold,
		left:       1,
		right:      1 + len(leftNodes),
	}

	// Children were built with indices relative to their own block; shift them
	// to their final position in the flattened array.
	nodes := make([]treeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	for _, node := range leftNodes {
		if !node.leaf {
			node.left++
			node.right++
		}
		nodes = append(nodes, node)
	}
	offset := 1 + len(leftNodes)
	for _, node := range rightNodes {
		if !node.leaf {
			node.left += offset
			node.right += offset
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func (dt *DecisionTree) leafNode(labels []int) treeNode {
	dist := make([]float64, dt.NumClasses)
	for _, label := range labels {
		dist[label]++
	}
	if len(labels) > 0 {
		for i := range dist {
			dist[i] /= float64(len(labels))
		}
	}
	return treeNode{featureIdx: -1, left: -1, right: -1, dist: dist, leaf: true}
}

func (dt *DecisionTree) findBestSplit(features [][]float64, labels []int) (int, float64, bool) {
	featureCount := len(features[0])
	candidates := dt.sampleFeatures(featureCount)

	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64

	for _, featureIdx := range candidates {
		values := make([]float64, len(features))
		for i := range features {
			values[i] = features[i][featureIdx]
		}
		for _, threshold := range candidateThresholds(values) {
			leftLabels, rightLabels := splitLabels(features, labels, featureIdx, threshold)
			if len(leftLabels) == 0 || len(rightLabels) == 0 {
				continue
			}
			impurity := weightedGini(leftLabels, rightLabels)
			if impurity < bestImpurity {
				bestImpurity = impurity
				bestFeature = featureIdx
				bestThreshold = threshold
			}
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

// sampleFeatures picks the feature subset considered at one split. With no rng
// or no cap configured the tree behaves like plain CART and scans everything.
func (dt *DecisionTree) sampleFeatures(featureCount int) []int {
	if dt.rng == nil || dt.MaxFeatures <= 0 || dt.MaxFeatures >= featureCount {
		all := make([]int, featureCount)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return dt.rng.Perm(featureCount)[:dt.MaxFeatures]
}

// candidateThresholds returns the midpoints between consecutive distinct
// sorted values.
func candidateThresholds(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	thresholds := make([]float64, 0, len(sorted))
	for i := 1; i < len(sorted); i++ {
		if sorted[i] > sorted[i-1] {
			thresholds = append(thresholds, (sorted[i-1]+sorted[i])/2)
		}
	}
	return thresholds
}

func splitData(features [][]float64, labels []int, featureIdx int, threshold float64) ([][]float64, []int, [][]float64, []int) {
	leftFeatures := make([][]float64, 0)
	leftLabels := make([]int, 0)
	rightFeatures := make([][]float64, 0)
	rightLabels := make([]int, 0)
	for i, feature := range features {
		if feature[featureIdx] <= threshold {
			leftFeatures = append(leftFeatures, feature)
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightFeatures = append(rightFeatures, feature)
			rightLabels = append(rightLabels, labels[i])
		}
	}
	return leftFeatures, leftLabels, rightFeatures, rightLabels
}

func splitLabels(features [][]float64, labels []int, featureIdx int, threshold float64) ([]int, []int) {
	leftLabels := make([]int, 0)
	rightLabels := make([]int, 0)
	for i, feature := range features {
		if feature[featureIdx] <= threshold {
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightLabels = append(rightLabels, labels[i])
		}
	}
	return leftLabels, rightLabels
}

func weightedGini(leftLabels, rightLabels []int) float64 {
	leftWeight := float64(len(leftLabels))
	rightWeight := float64(len(rightLabels))
	total := leftWeight + rightWeight
	return (leftWeight/total)*gini(leftLabels) + (rightWeight/total)*gini(rightLabels)
}

// gini accumulates class counts in label order so the floating-point result
// is identical across runs; map iteration here would make split selection
// depend on iteration order.
func gini(labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	maxLabel := 0
	for _, label := range labels {
		if label > maxLabel {
			maxLabel = label
		}
	}
	counts := make([]int, maxLabel+1)
	for _, label := range labels {
		counts[label]++
	}
	impurity := 1.0
	for _, count := range counts {
		prob := float64(count) / float64(len(labels))
		impurity -= prob * prob
	}
	return impurity
}

func isPure(labels []int) bool {
	if len(labels) == 0 {
		return true
	}
	first := labels[0]
	for _, label := range labels[1:] {
		if label != first {
			return false
		}
	}
	return true
}
