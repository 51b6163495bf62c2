package classifier

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	defaultEpochs       = 200
	defaultLearningRate = 0.5
	defaultL2           = 1e-4
	initScale           = 0.01
)

// LogisticRegression is a multinomial softmax regression trained with
// full-batch gradient descent.
type LogisticRegression struct {
	numClasses int
	epochs     int
	rate       float64
	l2         float64
	rng        *rand.Rand

	weights *mat.Dense
	bias    []float64
}

// NewLogisticRegression returns an untrained model. Non-positive Epochs and
// LearningRate use defaults; a negative L2 selects defaultL2 and zero disables
// regularisation.
func NewLogisticRegression(numClasses int, seed uint64, opts Options) *LogisticRegression {
	m := &LogisticRegression{
		numClasses: numClasses,
		epochs:     opts.Epochs,
		rate:       opts.LearningRate,
		l2:         opts.L2,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	if m.epochs <= 0 {
		m.epochs = defaultEpochs
	}
	if m.rate <= 0 {
		m.rate = defaultLearningRate
	}
	if m.l2 < 0 {
		m.l2 = defaultL2
	}
	return m
}

// Fit trains the model on x (N×D) and labels y.
func (m *LogisticRegression) Fit(x mat.Matrix, y []int) error {
	rows, cols, err := checkTrainingSet(x, y, m.numClasses)
	if err != nil {
		return fmt.Errorf("fit logistic regression: %w", err)
	}

	initial := make([]float64, cols*m.numClasses)
	for i := range initial {
		initial[i] = m.rng.NormFloat64() * initScale
	}
	m.weights = mat.NewDense(cols, m.numClasses, initial)
	m.bias = make([]float64, m.numClasses)

	var (
		probs mat.Dense
		grad  mat.Dense
		reg   mat.Dense
	)
	gradBias := make([]float64, m.numClasses)
	scale := 1 / float64(rows)
	for epoch := 0; epoch < m.epochs; epoch++ {
		m.forward(&probs, x)
		for i := 0; i < rows; i++ {
			probs.Set(i, y[i], probs.At(i, y[i])-1)
		}
		grad.Mul(x.T(), &probs)
		grad.Scale(scale, &grad)
		if m.l2 > 0 {
			reg.Scale(m.l2, m.weights)
			grad.Add(&grad, &reg)
		}
		grad.Scale(m.rate, &grad)
		m.weights.Sub(m.weights, &grad)

		for k := range gradBias {
			gradBias[k] = 0
		}
		for i := 0; i < rows; i++ {
			floats.Add(gradBias, probs.RawRowView(i))
		}
		floats.AddScaled(m.bias, -m.rate*scale, gradBias)
	}
	return nil
}

// PredictProba returns class probabilities for every row of x.
func (m *LogisticRegression) PredictProba(x mat.Matrix) (*mat.Dense, error) {
	if m.weights == nil {
		return nil, ErrNotFitted
	}
	if _, cols := x.Dims(); cols != m.weights.RawMatrix().Rows {
		return nil, fmt.Errorf("predict logistic regression: %d features, model expects %d", cols, m.weights.RawMatrix().Rows)
	}
	var out mat.Dense
	m.forward(&out, x)
	return &out, nil
}

func (m *LogisticRegression) forward(dst *mat.Dense, x mat.Matrix) {
	dst.Reset()
	dst.Mul(x, m.weights)
	rows, _ := dst.Dims()
	for i := 0; i < rows; i++ {
		row := dst.RawRowView(i)
		floats.Add(row, m.bias)
		softmax(row)
	}
}
