// Package config loads, normalizes, and validates labelaudit configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LABELAUDIT_STATE_DIR. The Config type centralizes every knob the audit
// pipeline and CLI need: estimator folds and seed, classifier
// hyperparameters, feature provider choice, report window, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical formats, and clear validation errors.
package config
