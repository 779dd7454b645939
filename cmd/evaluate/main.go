package main

import (
	"flag"
	"fmt"
	"log"

	"vinoapi/dataset"
	"vinoapi/ml"
)

func main() {
	trees := flag.Int("trees", 100, "number of trees in the forest")
	maxDepth := flag.Int("max_depth", 10, "max tree depth")
	seed := flag.Int64("seed", 42, "split and training seed")
	testRatio := flag.Float64("test_ratio", 0.2, "held-out ratio")
	flag.Parse()

	samples, labels, err := dataset.Load()
	if err != nil {
		log.Fatalf("failed to load wine dataset: %v", err)
	}

	trainX, trainY, testX, testY := dataset.Split(samples, labels, *testRatio, *seed)

	model := ml.NewRandomForest(*trees, *maxDepth, *seed)
	if err := model.Fit(trainX, trainY); err != nil {
		log.Fatalf("failed to fit classifier: %v", err)
	}

	accuracy, predictions, err := ml.EvaluateClassifier(model, testX, testY)
	if err != nil {
		log.Fatalf("failed to evaluate classifier: %v", err)
	}
	confusion, err := ml.ConfusionMatrix(testY, predictions, dataset.NumClasses)
	if err != nil {
		log.Fatalf("failed to build confusion matrix: %v", err)
	}

	trainRows, _ := trainX.Dims()
	testRows, _ := testX.Dims()
	fmt.Printf("train=%d holdout=%d trees=%d depth=%d seed=%d\n", trainRows, testRows, *trees, *maxDepth, *seed)
	fmt.Printf("holdout accuracy: %.4f\n", accuracy)
	fmt.Println("confusion matrix (rows=actual, cols=predicted):")
	for actual, row := range confusion {
		fmt.Printf("  clase_%d: %v\n", actual, row)
	}
}
