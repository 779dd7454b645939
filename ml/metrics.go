package ml

import (
	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
)

func AccuracyScore(yTrue, yPred []int) (float64, error) {
	if len(yTrue) == 0 {
		return 0, errors.New("no samples")
	}
	if len(yTrue) != len(yPred) {
		return 0, errors.Newf("got %d labels and %d predictions", len(yTrue), len(yPred))
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// ConfusionMatrix counts predictions per (actual, predicted) pair.
func ConfusionMatrix(yTrue, yPred []int, numClasses int) ([][]int, error) {
	if len(yTrue) != len(yPred) {
		return nil, errors.Newf("got %d labels and %d predictions", len(yTrue), len(yPred))
	}
	counts := make([][]int, numClasses)
	for i := range counts {
		counts[i] = make([]int, numClasses)
	}
	for i := range yTrue {
		if yTrue[i] < 0 || yTrue[i] >= numClasses || yPred[i] < 0 || yPred[i] >= numClasses {
			return nil, errors.Newf("label out of range at sample %d", i)
		}
		counts[yTrue[i]][yPred[i]]++
	}
	return counts, nil
}

// EvaluateClassifier predicts every row of X and scores against y.
func EvaluateClassifier(model Classifier, X mat.Matrix, y []int) (float64, []int, error) {
	n, _ := X.Dims()
	if n != len(y) {
		return 0, nil, errors.Newf("matrix has %d rows but %d labels", n, len(y))
	}
	predictions := make([]int, n)
	for i := 0; i < n; i++ {
		label, err := model.Predict(mat.Row(nil, i, X))
		if err != nil {
			return 0, nil, errors.Wrapf(err, "predict sample %d", i)
		}
		predictions[i] = label
	}
	accuracy, err := AccuracyScore(y, predictions)
	if err != nil {
		return 0, nil, err
	}
	return accuracy, predictions, nil
}
