package crossval

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"labelaudit/internal/auditerr"
	"labelaudit/internal/classifier"
	"labelaudit/internal/logging"
)

// SumTolerance bounds how far a probability row may drift from 1.
const SumTolerance = 1e-6

// Config configures an Estimator. Zero Workers means GOMAXPROCS.
type Config struct {
	Folds   int
	Seed    uint64
	Workers int
	Factory classifier.Factory
	Logger  *slog.Logger
}

// Estimator runs stratified cross-validation.
type Estimator struct {
	cfg    Config
	logger *slog.Logger
}

// FoldStats summarises one fold.
type FoldStats struct {
	Fold     int           `json:"fold"`
	Train    int           `json:"train"`
	HeldOut  int           `json:"held_out"`
	Duration time.Duration `json:"duration"`
}

// Result holds the merged out-of-sample probabilities.
type Result struct {
	Probabilities *mat.Dense
	Assignment    []int
	Folds         []FoldStats
}

type foldResult struct {
	stats   FoldStats
	indices []int
	probs   *mat.Dense
}

// New validates cfg and returns an Estimator.
func New(cfg Config) (*Estimator, error) {
	if cfg.Folds < 2 {
		return nil, fmt.Errorf("%w: folds must be at least 2 (got %d)", auditerr.ErrConfiguration, cfg.Folds)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must be >= 0 (got %d)", auditerr.ErrConfiguration, cfg.Workers)
	}
	if cfg.Factory == nil {
		return nil, fmt.Errorf("%w: classifier factory is required", auditerr.ErrConfiguration)
	}
	return &Estimator{
		cfg:    cfg,
		logger: logging.NewComponentLogger(cfg.Logger, "estimator"),
	}, nil
}

// Estimate returns an N×K matrix whose row i was produced by a model that
// never saw row i during training.
func (e *Estimator) Estimate(ctx context.Context, x mat.Matrix, y []int, classes []string) (*Result, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: nil feature matrix", auditerr.ErrAlignmentMismatch)
	}
	rows, cols := x.Dims()
	if rows != len(y) {
		return nil, fmt.Errorf("%w: %d feature rows, %d labels", auditerr.ErrAlignmentMismatch, rows, len(y))
	}
	k := len(classes)
	if rows == 0 {
		return &Result{Probabilities: &mat.Dense{}, Assignment: []int{}}, nil
	}
	if cols == 0 {
		return nil, fmt.Errorf("%w: feature matrix has no columns", auditerr.ErrAlignmentMismatch)
	}

	assignment, err := e.Folds(y, classes)
	if err != nil {
		return nil, fmt.Errorf("assign folds: %w", err)
	}

	workers := e.cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]foldResult, e.cfg.Folds)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for fold := 0; fold < e.cfg.Folds; fold++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.runFold(fold, x, cols, y, k, assignment)
			if err != nil {
				return fmt.Errorf("fold %d: %w", fold, err)
			}
			results[fold] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	probs, err := merge(results, rows, k)
	if err != nil {
		return nil, err
	}
	stats := make([]FoldStats, len(results))
	for i, r := range results {
		stats[i] = r.stats
	}
	return &Result{Probabilities: probs, Assignment: assignment, Folds: stats}, nil
}

func (e *Estimator) runFold(fold int, x mat.Matrix, cols int, y []int, k int, assignment []int) (foldResult, error) {
	start := time.Now()
	var train, held []int
	for i, f := range assignment {
		if f == fold {
			held = append(held, i)
		} else {
			train = append(train, i)
		}
	}

	trainX := gatherRows(x, train, cols)
	trainY := make([]int, len(train))
	for j, i := range train {
		trainY[j] = y[i]
	}

	model := e.cfg.Factory(k, e.cfg.Seed+uint64(fold)+1)
	if err := model.Fit(trainX, trainY); err != nil {
		return foldResult{}, fmt.Errorf("train classifier: %w", err)
	}
	probs, err := model.PredictProba(gatherRows(x, held, cols))
	if err != nil {
		return foldResult{}, fmt.Errorf("predict held-out rows: %w", err)
	}
	if r, c := probs.Dims(); r != len(held) || c != k {
		return foldResult{}, fmt.Errorf("%w: classifier returned %dx%d for %d rows and %d classes",
			auditerr.ErrAlignmentMismatch, r, c, len(held), k)
	}

	stats := FoldStats{Fold: fold, Train: len(train), HeldOut: len(held), Duration: time.Since(start)}
	e.logger.Debug("fold complete",
		logging.Int(logging.FieldFold, fold),
		logging.Int("train", stats.Train),
		logging.Int("held_out", stats.HeldOut),
		logging.Duration("duration", stats.Duration),
	)
	return foldResult{stats: stats, indices: held, probs: probs}, nil
}

// merge scatters per-fold predictions into one matrix and checks coverage.
func merge(results []foldResult, rows, k int) (*mat.Dense, error) {
	out := mat.NewDense(rows, k, nil)
	written := make([]bool, rows)
	for _, res := range results {
		for j, index := range res.indices {
			if index < 0 || index >= rows {
				return nil, fmt.Errorf("%w: fold %d produced index %d outside [0,%d)", auditerr.ErrAlignmentMismatch, res.stats.Fold, index, rows)
			}
			if written[index] {
				return nil, fmt.Errorf("%w: row %d written twice", auditerr.ErrAlignmentMismatch, index)
			}
			out.SetRow(index, res.probs.RawRowView(j))
			written[index] = true
		}
	}
	for i, ok := range written {
		if !ok {
			return nil, fmt.Errorf("%w: row %d was never predicted", auditerr.ErrAlignmentMismatch, i)
		}
	}
	if err := CheckDistributions(out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckDistributions verifies every row is finite, non-negative and sums to
// 1 within SumTolerance.
func CheckDistributions(p mat.Matrix) error {
	rows, cols := p.Dims()
	for i := 0; i < rows; i++ {
		var sum float64
		for c := 0; c < cols; c++ {
			v := p.At(i, c)
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("%w: row %d column %d is %v", auditerr.ErrInvalidProbabilities, i, c, v)
			}
			sum += v
		}
		if math.Abs(sum-1) > SumTolerance {
			return fmt.Errorf("%w: row %d sums to %.9f", auditerr.ErrInvalidProbabilities, i, sum)
		}
	}
	return nil
}

func gatherRows(x mat.Matrix, indices []int, cols int) *mat.Dense {
	out := mat.NewDense(len(indices), cols, nil)
	row := make([]float64, cols)
	for j, i := range indices {
		mat.Row(row, i, x)
		out.SetRow(j, row)
	}
	return out
}
