package ml

import "gonum.org/v1/gonum/mat"

type Classifier interface {
	Fit(X mat.Matrix, y []int) error
	Predict(features []float64) (int, error)
	PredictProba(features []float64) ([]float64, error)
}
