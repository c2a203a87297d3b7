package ml

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// LogisticRegression is a binary classifier fit by batch gradient descent.
// Features are standardized with the training-set statistics, which are
// stored alongside the weights so Predict sees the same scale.
type LogisticRegression struct {
	LearningRate float64
	Iterations   int

	weights []float64
	bias    float64
	mean    []float64
	std     []float64
}

// NewLogisticRegression returns a model with the default hyperparameters.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		LearningRate: 0.1,
		Iterations:   1000,
	}
}

func (lr *LogisticRegression) Train(features [][]float64, labels []int) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	n := len(features)
	d := len(features[0])
	for i, row := range features {
		if len(row) != d {
			return fmt.Errorf("feature row %d has %d values, want %d", i, len(row), d)
		}
	}
	for i, label := range labels {
		if label != 0 && label != 1 {
			return fmt.Errorf("label %d at row %d: want 0 or 1", label, i)
		}
	}
	if lr.LearningRate <= 0 {
		lr.LearningRate = 0.1
	}
	if lr.Iterations <= 0 {
		lr.Iterations = 1000
	}

	lr.mean, lr.std = columnStats(features)

	x := mat.NewDense(n, d, nil)
	for i, row := range features {
		for j, v := range row {
			x.Set(i, j, (v-lr.mean[j])/lr.std[j])
		}
	}
	y := mat.NewVecDense(n, nil)
	for i, label := range labels {
		y.SetVec(i, float64(label))
	}

	w := mat.NewVecDense(d, nil)
	b := 0.0
	var z mat.VecDense
	residual := mat.NewVecDense(n, nil)
	for iter := 0; iter < lr.Iterations; iter++ {
		z.MulVec(x, w)
		for i := 0; i < n; i++ {
			residual.SetVec(i, sigmoid(z.AtVec(i)+b)-y.AtVec(i))
		}

		var grad mat.VecDense
		grad.MulVec(x.T(), residual)
		grad.ScaleVec(lr.LearningRate/float64(n), &grad)
		w.SubVec(w, &grad)
		b -= lr.LearningRate * mat.Sum(residual) / float64(n)
	}

	lr.weights = make([]float64, d)
	copy(lr.weights, w.RawVector().Data)
	lr.bias = b
	return nil
}

// PredictProba returns the probability of the positive class.
func (lr *LogisticRegression) PredictProba(features []float64) (float64, error) {
	if len(lr.weights) == 0 {
		return 0, errors.New("model not trained")
	}
	if len(features) != len(lr.weights) {
		return 0, fmt.Errorf("got %d features, want %d", len(features), len(lr.weights))
	}

	z := lr.bias
	for j, v := range features {
		z += lr.weights[j] * (v - lr.mean[j]) / lr.std[j]
	}
	return sigmoid(z), nil
}

// Predict returns the class label and the model's confidence in it.
func (lr *LogisticRegression) Predict(features []float64) (int, float64, error) {
	proba, err := lr.PredictProba(features)
	if err != nil {
		return 0, 0, err
	}
	if proba >= 0.5 {
		return 1, proba, nil
	}
	return 0, 1 - proba, nil
}

type logregState struct {
	Weights []float64
	Bias    float64
	Mean    []float64
	Std     []float64
}

// Save writes the fitted model to path, silently overwriting any previous
// artifact.
func (lr *LogisticRegression) Save(path string) error {
	if len(lr.weights) == 0 {
		return errors.New("model not trained")
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	state := logregState{
		Weights: lr.weights,
		Bias:    lr.bias,
		Mean:    lr.mean,
		Std:     lr.std,
	}
	return gob.NewEncoder(file).Encode(state)
}

// Load restores a model saved by Save.
func (lr *LogisticRegression) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var state logregState
	if err := gob.NewDecoder(file).Decode(&state); err != nil {
		return err
	}
	if len(state.Weights) == 0 {
		return errors.New("empty model state")
	}
	lr.weights = state.Weights
	lr.bias = state.Bias
	lr.mean = state.Mean
	lr.std = state.Std
	return nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// columnStats computes per-feature mean and standard deviation. A constant
// column gets std 1 so standardization stays defined.
func columnStats(features [][]float64) (mean, std []float64) {
	n := float64(len(features))
	d := len(features[0])
	mean = make([]float64, d)
	std = make([]float64, d)

	for _, row := range features {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}
	for _, row := range features {
		for j, v := range row {
			diff := v - mean[j]
			std[j] += diff * diff
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}
	return mean, std
}
