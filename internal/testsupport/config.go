package testsupport

import (
	"path/filepath"
	"testing"

	"labelaudit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Estimator.Workers = 2
	cfgVal.Classifier.Epochs = 100

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithFolds overrides the fold count.
func WithFolds(folds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Estimator.Folds = folds
	}
}

// WithClassifier selects a built-in classifier by name.
func WithClassifier(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Estimator.Classifier = name
	}
}

// WithFeatureFile switches the config to precomputed features at path.
func WithFeatureFile(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Features.Provider = "file"
		b.cfg.Features.Path = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
