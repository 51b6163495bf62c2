package classifier

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"labelaudit/internal/auditerr"
)

// ErrNotFitted is returned when PredictProba runs before Fit.
var ErrNotFitted = errors.New("classifier not fitted")

// Classifier is a probabilistic multi-class model.
type Classifier interface {
	Fit(x mat.Matrix, y []int) error
	PredictProba(x mat.Matrix) (*mat.Dense, error)
}

// Factory creates a fresh, untrained classifier for numClasses classes.
type Factory func(numClasses int, seed uint64) Classifier

// Options holds hyperparameters shared by the built-in classifiers.
type Options struct {
	Epochs       int
	LearningRate float64
	L2           float64
	Temperature  float64
}

const (
	NameLogReg   = "logreg"
	NameCentroid = "centroid"
)

// Names lists the built-in classifier names.
func Names() []string {
	return []string{NameCentroid, NameLogReg}
}

// NewFactory resolves a built-in classifier by name.
func NewFactory(name string, opts Options) (Factory, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameLogReg, "":
		return func(numClasses int, seed uint64) Classifier {
			return NewLogisticRegression(numClasses, seed, opts)
		}, nil
	case NameCentroid:
		return func(numClasses int, _ uint64) Classifier {
			return NewNearestCentroid(numClasses, opts.Temperature)
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown classifier %q (expected one of %s)",
			auditerr.ErrConfiguration, name, strings.Join(Names(), ", "))
	}
}

func checkTrainingSet(x mat.Matrix, y []int, numClasses int) (int, int, error) {
	if x == nil {
		return 0, 0, errors.New("nil training matrix")
	}
	rows, cols := x.Dims()
	if rows == 0 {
		return 0, 0, errors.New("empty training set")
	}
	if rows != len(y) {
		return 0, 0, fmt.Errorf("%w: %d rows, %d labels", auditerr.ErrAlignmentMismatch, rows, len(y))
	}
	for i, label := range y {
		if label < 0 || label >= numClasses {
			return 0, 0, fmt.Errorf("%w: label %d at row %d outside [0,%d)", auditerr.ErrUnknownLabel, label, i, numClasses)
		}
	}
	return rows, cols, nil
}

// softmax rewrites row as a probability distribution.
func softmax(row []float64) {
	peak := floats.Max(row)
	if math.IsInf(peak, -1) {
		for i := range row {
			row[i] = 0
		}
		return
	}
	for i, v := range row {
		row[i] = math.Exp(v - peak)
	}
	floats.Scale(1/floats.Sum(row), row)
}
