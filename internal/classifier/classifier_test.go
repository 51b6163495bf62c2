package classifier_test

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"labelaudit/internal/auditerr"
	"labelaudit/internal/classifier"
)

// blobs returns perSide rows for each of three well-separated classes.
func blobs(perSide int) (*mat.Dense, []int) {
	centers := [][]float64{{1, 0}, {0, 1}, {-1, -1}}
	x := mat.NewDense(perSide*len(centers), 2, nil)
	y := make([]int, 0, perSide*len(centers))
	row := 0
	for k, c := range centers {
		for i := 0; i < perSide; i++ {
			jitter := float64(i%5) * 0.02
			x.SetRow(row, []float64{c[0] + jitter, c[1] - jitter})
			y = append(y, k)
			row++
		}
	}
	return x, y
}

func assertDistributions(t *testing.T, probs *mat.Dense) {
	t.Helper()
	rows, _ := probs.Dims()
	for i := 0; i < rows; i++ {
		var sum float64
		for _, v := range probs.RawRowView(i) {
			if v < 0 {
				t.Fatalf("row %d has negative probability %f", i, v)
			}
			sum += v
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("row %d sums to %f", i, sum)
		}
	}
}

func accuracy(probs *mat.Dense, y []int) float64 {
	correct := 0
	for i, label := range y {
		row := probs.RawRowView(i)
		best := 0
		for k := range row {
			if row[k] > row[best] {
				best = k
			}
		}
		if best == label {
			correct++
		}
	}
	return float64(correct) / float64(len(y))
}

func TestBuiltinsSeparateBlobs(t *testing.T) {
	x, y := blobs(10)
	for _, name := range classifier.Names() {
		t.Run(name, func(t *testing.T) {
			factory, err := classifier.NewFactory(name, classifier.Options{})
			if err != nil {
				t.Fatalf("NewFactory: %v", err)
			}
			model := factory(3, 7)
			if err := model.Fit(x, y); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			probs, err := model.PredictProba(x)
			if err != nil {
				t.Fatalf("PredictProba: %v", err)
			}
			assertDistributions(t, probs)
			if acc := accuracy(probs, y); acc < 0.95 {
				t.Fatalf("expected >=95%% accuracy, got %.2f", acc)
			}
		})
	}
}

func TestLogisticRegressionIsDeterministicPerSeed(t *testing.T) {
	x, y := blobs(6)
	predict := func(seed uint64) *mat.Dense {
		model := classifier.NewLogisticRegression(3, seed, classifier.Options{Epochs: 50})
		if err := model.Fit(x, y); err != nil {
			t.Fatalf("Fit: %v", err)
		}
		probs, err := model.PredictProba(x)
		if err != nil {
			t.Fatalf("PredictProba: %v", err)
		}
		return probs
	}
	if !mat.Equal(predict(11), predict(11)) {
		t.Fatal("expected identical predictions for the same seed")
	}
}

func TestCentroidAssignsZeroToUnseenClass(t *testing.T) {
	x, y := blobs(4)
	model := classifier.NewNearestCentroid(4, 1)
	if err := model.Fit(x, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	probs, err := model.PredictProba(x)
	if err != nil {
		t.Fatalf("PredictProba: %v", err)
	}
	assertDistributions(t, probs)
	if got := probs.At(0, 3); got != 0 {
		t.Fatalf("expected zero probability for unseen class, got %f", got)
	}
}

func TestFitRejectsBadInput(t *testing.T) {
	x, y := blobs(2)
	model := classifier.NewLogisticRegression(3, 1, classifier.Options{})
	if _, err := model.PredictProba(x); !errors.Is(err, classifier.ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
	if err := model.Fit(x, y[:1]); !errors.Is(err, auditerr.ErrAlignmentMismatch) {
		t.Fatalf("expected alignment mismatch, got %v", err)
	}
	bad := append([]int(nil), y...)
	bad[0] = 9
	if err := model.Fit(x, bad); !errors.Is(err, auditerr.ErrUnknownLabel) {
		t.Fatalf("expected unknown label, got %v", err)
	}
}

func TestNewFactoryRejectsUnknownName(t *testing.T) {
	if _, err := classifier.NewFactory("forest", classifier.Options{}); !errors.Is(err, auditerr.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLogisticRegressionL2Options(t *testing.T) {
	x, y := blobs(6)
	predict := func(l2 float64) *mat.Dense {
		model := classifier.NewLogisticRegression(3, 5, classifier.Options{Epochs: 50, L2: l2})
		if err := model.Fit(x, y); err != nil {
			t.Fatalf("Fit: %v", err)
		}
		probs, err := model.PredictProba(x)
		if err != nil {
			t.Fatalf("PredictProba: %v", err)
		}
		return probs
	}
	unregularised := predict(0)
	if mat.Equal(unregularised, predict(-1)) {
		t.Fatal("negative L2 should select the default penalty, not disable it")
	}
	if !mat.Equal(predict(-1), predict(1e-4)) {
		t.Fatal("negative L2 should match the default penalty of 1e-4")
	}
}
