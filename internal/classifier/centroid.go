package classifier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const defaultTemperature = 0.5

// NearestCentroid scores each class by the squared distance to the mean of
// its training rows: p(c|x) ∝ exp(-‖x-μc‖²/T). Classes without training rows
// receive probability zero.
type NearestCentroid struct {
	numClasses  int
	temperature float64

	centroids [][]float64
	dim       int
}

// NewNearestCentroid returns an untrained model.
func NewNearestCentroid(numClasses int, temperature float64) *NearestCentroid {
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	return &NearestCentroid{numClasses: numClasses, temperature: temperature}
}

// Fit computes per-class centroids.
func (m *NearestCentroid) Fit(x mat.Matrix, y []int) error {
	rows, cols, err := checkTrainingSet(x, y, m.numClasses)
	if err != nil {
		return fmt.Errorf("fit nearest centroid: %w", err)
	}
	sums := make([][]float64, m.numClasses)
	counts := make([]int, m.numClasses)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, x)
		label := y[i]
		if sums[label] == nil {
			sums[label] = make([]float64, cols)
		}
		floats.Add(sums[label], row)
		counts[label]++
	}
	for k, sum := range sums {
		if sum != nil {
			floats.Scale(1/float64(counts[k]), sum)
		}
	}
	m.centroids = sums
	m.dim = cols
	return nil
}

// PredictProba returns class probabilities for every row of x.
func (m *NearestCentroid) PredictProba(x mat.Matrix) (*mat.Dense, error) {
	if m.centroids == nil {
		return nil, ErrNotFitted
	}
	rows, cols := x.Dims()
	if cols != m.dim {
		return nil, fmt.Errorf("predict nearest centroid: %d features, model expects %d", cols, m.dim)
	}
	out := mat.NewDense(rows, m.numClasses, nil)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, x)
		scores := out.RawRowView(i)
		for k, centroid := range m.centroids {
			if centroid == nil {
				scores[k] = math.Inf(-1)
				continue
			}
			d := floats.Distance(row, centroid, 2)
			scores[k] = -(d * d) / m.temperature
		}
		softmax(scores)
	}
	return out, nil
}
