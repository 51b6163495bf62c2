package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEstimator()
	c.normalizeClassifier()
	if err := c.normalizeFeatures(); err != nil {
		return err
	}
	c.normalizeReport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("LABELAUDIT_STATE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.StateDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEstimator() {
	c.Estimator.Classifier = strings.ToLower(strings.TrimSpace(c.Estimator.Classifier))
	if c.Estimator.Classifier == "" {
		c.Estimator.Classifier = defaultClassifier
	}
	if c.Estimator.Folds == 0 {
		c.Estimator.Folds = defaultFolds
	}
}

func (c *Config) normalizeClassifier() {
	if c.Classifier.Epochs <= 0 {
		c.Classifier.Epochs = defaultEpochs
	}
	if c.Classifier.LearningRate <= 0 {
		c.Classifier.LearningRate = defaultLearningRate
	}
	if c.Classifier.Temperature <= 0 {
		c.Classifier.Temperature = defaultTemperature
	}
}

func (c *Config) normalizeFeatures() error {
	c.Features.Provider = strings.ToLower(strings.TrimSpace(c.Features.Provider))
	if c.Features.Provider == "" {
		c.Features.Provider = defaultFeatureProvider
	}
	if c.Features.Dim <= 0 {
		c.Features.Dim = defaultFeatureDim
	}
	if c.Features.ContextWindow < 0 {
		c.Features.ContextWindow = 0
	}
	c.Features.Path = strings.TrimSpace(c.Features.Path)
	if c.Features.Path != "" {
		var err error
		if c.Features.Path, err = expandPath(c.Features.Path); err != nil {
			return fmt.Errorf("features.path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeReport() {
	c.Report.Format = strings.ToLower(strings.TrimSpace(c.Report.Format))
	if c.Report.Format == "" {
		c.Report.Format = defaultReportFormat
	}
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("LABELAUDIT_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
