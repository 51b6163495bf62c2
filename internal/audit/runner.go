package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"labelaudit/internal/auditerr"
	"labelaudit/internal/classifier"
	"labelaudit/internal/config"
	"labelaudit/internal/corpus"
	"labelaudit/internal/crossval"
	"labelaudit/internal/features"
	"labelaudit/internal/history"
	"labelaudit/internal/issues"
	"labelaudit/internal/logging"
	"labelaudit/internal/report"
	"labelaudit/internal/vocab"
)

// ErrRunInProgress is returned when another process holds the run lock.
var ErrRunInProgress = errors.New("another audit is already running")

// Runner wires configuration to the pipeline stages.
type Runner struct {
	cfg     *config.Config
	store   *history.Store
	logger  *slog.Logger
	factory classifier.Factory
}

// Result is the outcome of one audit.
type Result struct {
	Run        history.Run
	Classes    []string
	Thresholds []float64
	// Joint counts (given label, confident class) pairs; nil when fewer
	// than two classes were present.
	Joint  *mat.Dense
	Issues []report.Issue
	Folds  []crossval.FoldStats
	Read   corpus.ReadStats
	Locate report.Stats
}

// NewRunner validates the classifier selection. store may be nil, in which
// case runs are not persisted.
func NewRunner(cfg *config.Config, store *history.Store, logger *slog.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("audit runner requires config")
	}
	factory, err := classifier.NewFactory(cfg.Estimator.Classifier, classifier.Options{
		Epochs:       cfg.Classifier.Epochs,
		LearningRate: cfg.Classifier.LearningRate,
		L2:           cfg.Classifier.L2,
		Temperature:  cfg.Classifier.Temperature,
	})
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:     cfg,
		store:   store,
		logger:  logging.NewComponentLogger(logger, "audit"),
		factory: factory,
	}, nil
}

// Run audits the corpus file at path under the state-directory lock and
// records the result in history.
func (r *Runner) Run(ctx context.Context, path string) (*Result, error) {
	res, err := r.run(ctx, path)
	if err != nil {
		r.logger.Error("audit failed",
			logging.String("corpus", path),
			logging.String("error_kind", auditerr.Kind(err)),
			logging.Error(err),
		)
		return nil, err
	}
	return res, nil
}

func (r *Runner) run(ctx context.Context, path string) (*Result, error) {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	lock := flock.New(r.cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrRunInProgress, r.cfg.LockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	c, stats, err := corpus.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if stats.Skipped > 0 {
		logging.WarnWithContext(r.logger, "skipped malformed corpus lines", "corpus_skipped_lines",
			logging.Int("skipped", stats.Skipped),
			logging.String(logging.FieldErrorHint, "lines need at least a token and a label"),
			logging.String(logging.FieldImpact, "skipped lines are not audited"),
		)
	}

	x, providerName, err := r.buildFeatures(ctx, c)
	if err != nil {
		return nil, err
	}
	res, err := r.Audit(ctx, c, x)
	if err != nil {
		return nil, err
	}
	res.Read = stats
	res.Run.Provider = providerName
	if abs, err := filepath.Abs(path); err == nil {
		res.Run.CorpusPath = abs
	} else {
		res.Run.CorpusPath = path
	}

	if r.store != nil {
		if err := r.store.SaveRun(ctx, res.Run, res.Issues); err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
	}
	r.logger.Info("audit complete",
		logging.String(logging.FieldRunID, res.Run.ID),
		logging.Int("tokens", res.Run.Tokens),
		logging.Int("issues", len(res.Issues)),
		logging.Duration("duration", res.Run.Duration),
	)
	return res, nil
}

func (r *Runner) buildFeatures(ctx context.Context, c *corpus.Corpus) (*mat.Dense, string, error) {
	if c.Len() == 0 {
		return &mat.Dense{}, r.cfg.Features.Provider, nil
	}
	switch r.cfg.Features.Provider {
	case "file":
		x, err := features.LoadFile(r.cfg.Features.Path, c.Len())
		if err != nil {
			return nil, "", fmt.Errorf("load features: %w", err)
		}
		return x, "file", nil
	default:
		p := features.NewHashedProvider(r.cfg.Features.Dim, r.cfg.Features.ContextWindow)
		x, err := features.Build(ctx, c, p)
		if err != nil {
			return nil, "", fmt.Errorf("build features: %w", err)
		}
		return x, p.Name(), nil
	}
}

// Audit runs vocabulary, estimation, detection and reporting on an
// in-memory corpus and its aligned feature matrix. Neither input is
// modified.
func (r *Runner) Audit(ctx context.Context, c *corpus.Corpus, x mat.Matrix) (*Result, error) {
	start := time.Now()
	if err := c.Validate(); err != nil {
		return nil, auditerr.Wrap(auditerr.ErrAlignmentMismatch, "corpus", "validate", "", err)
	}
	n := c.Len()
	if err := features.CheckRows(x, n); err != nil {
		return nil, err
	}

	labels := c.Labels()
	v := vocab.New(labels)
	y, err := v.EncodeAll(labels)
	if err != nil {
		return nil, fmt.Errorf("encode labels: %w", err)
	}
	classes := v.Classes()

	runID := uuid.NewString()
	logger := r.logger.With(logging.String(logging.FieldRunID, runID))
	res := &Result{
		Run: history.Run{
			ID:         runID,
			CreatedAt:  start.UTC(),
			Tokens:     n,
			Sentences:  len(c.Sentences),
			Classes:    classes,
			Folds:      r.cfg.Estimator.Folds,
			Seed:       r.cfg.Estimator.Seed,
			Classifier: r.cfg.Estimator.Classifier,
			Thresholds: map[string]float64{},
		},
		Classes:    classes,
		Thresholds: make([]float64, len(classes)),
		Issues:     []report.Issue{},
	}
	if len(classes) < 2 || n == 0 {
		logger.Info("fewer than two classes present; nothing to audit", logging.Int("classes", len(classes)))
		res.Run.Duration = time.Since(start)
		return res, nil
	}

	est, err := crossval.New(crossval.Config{
		Folds:   r.cfg.Estimator.Folds,
		Seed:    r.cfg.Estimator.Seed,
		Workers: r.cfg.Estimator.Workers,
		Factory: r.factory,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("estimating out-of-sample probabilities",
		logging.Int("tokens", n),
		logging.Int("classes", len(classes)),
		logging.Int("folds", r.cfg.Estimator.Folds),
		logging.Uint64("seed", r.cfg.Estimator.Seed),
	)
	cv, err := est.Estimate(ctx, x, y, classes)
	if err != nil {
		return nil, fmt.Errorf("estimate probabilities: %w", err)
	}

	det, err := issues.Detect(cv.Probabilities, y)
	if err != nil {
		return nil, fmt.Errorf("detect issues: %w", err)
	}
	joint, err := issues.ConfidentJoint(cv.Probabilities, y, det.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("confident joint: %w", err)
	}

	rep := report.New(report.Options{Window: r.cfg.Report.Window, Logger: logger})
	list, stats, err := rep.Build(c, v, cv.Probabilities, det.Flags)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}

	res.Thresholds = det.Thresholds
	for i, class := range classes {
		res.Run.Thresholds[class] = det.Thresholds[i]
		logger.Debug("class threshold",
			logging.String("class", class),
			logging.Float64("threshold", det.Thresholds[i]),
		)
	}
	res.Joint = joint
	res.Issues = list
	res.Folds = cv.Folds
	res.Locate = stats
	res.Run.IssueCount = len(list)
	res.Run.Fallbacks = stats.Fallbacks
	res.Run.Misses = stats.Misses
	res.Run.Duration = time.Since(start)
	return res, nil
}
