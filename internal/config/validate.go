package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	knownClassifiers = []string{"centroid", "logreg"}
	knownProviders   = []string{"file", "hashed"}
	knownFormats     = []string{"json", "table", "text"}
	knownLevels      = []string{"debug", "info", "warn", "error"}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEstimator(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateFeatures(); err != nil {
		return err
	}
	if err := c.validateReport(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateEstimator() error {
	if c.Estimator.Folds < 2 {
		return fmt.Errorf("estimator.folds must be at least 2, got %d", c.Estimator.Folds)
	}
	if c.Estimator.Workers < 0 {
		return errors.New("estimator.workers must be zero (all CPUs) or positive")
	}
	if !contains(knownClassifiers, c.Estimator.Classifier) {
		return fmt.Errorf("estimator.classifier %q unsupported (expected one of %s)",
			c.Estimator.Classifier, strings.Join(knownClassifiers, ", "))
	}
	return nil
}

func (c *Config) validateClassifier() error {
	if c.Classifier.L2 < 0 {
		return fmt.Errorf("classifier.l2 must be non-negative, got %g", c.Classifier.L2)
	}
	return nil
}

func (c *Config) validateFeatures() error {
	if !contains(knownProviders, c.Features.Provider) {
		return fmt.Errorf("features.provider %q unsupported (expected one of %s)",
			c.Features.Provider, strings.Join(knownProviders, ", "))
	}
	if c.Features.Provider == "file" && c.Features.Path == "" {
		return errors.New("features.path is required when features.provider is \"file\"")
	}
	return nil
}

func (c *Config) validateReport() error {
	if c.Report.Window < 0 {
		return fmt.Errorf("report.window must be non-negative, got %d", c.Report.Window)
	}
	if c.Report.Limit < 0 {
		return fmt.Errorf("report.limit must be non-negative, got %d", c.Report.Limit)
	}
	if !contains(knownFormats, c.Report.Format) {
		return fmt.Errorf("report.format %q unsupported (expected one of %s)",
			c.Report.Format, strings.Join(knownFormats, ", "))
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !contains(knownLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level %q unsupported (expected one of %s)",
			c.Logging.Level, strings.Join(knownLevels, ", "))
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
