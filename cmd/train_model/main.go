package main

import (
	"flag"
	"fmt"
	"log"

	"predserve/ml"
)

func main() {
	dataPath := flag.String("data", "", "training data CSV (default: bundled dataset)")
	modelPath := flag.String("model_path", "model.gob", "model output path")
	learningRate := flag.Float64("learning_rate", 0.1, "gradient descent step size")
	iterations := flag.Int("iterations", 1000, "training iterations")
	flag.Parse()

	dataset, err := loadDataset(*dataPath)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	log.Printf("dataset loaded: %d rows, %d features", len(dataset.Features), len(dataset.FeatureNames))

	model := ml.NewLogisticRegression()
	model.LearningRate = *learningRate
	model.Iterations = *iterations
	if err := model.Train(dataset.Features, dataset.Labels); err != nil {
		log.Fatalf("failed to train model: %v", err)
	}

	// Overwrites any previous artifact at the same path.
	if err := model.Save(*modelPath); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}

	fmt.Printf("model saved to %s\n", *modelPath)
}

func loadDataset(path string) (*ml.Dataset, error) {
	if path == "" {
		return ml.LoadBundledDataset()
	}
	return ml.LoadDatasetFile(path)
}
