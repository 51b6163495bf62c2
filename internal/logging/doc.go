// Package logging assembles the structured slog loggers used across labelaudit.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and standardizes the field names pipeline code attaches (component,
// run_id, fold, event_type). A no-op logger is provided for tests and for
// library callers that do not care about diagnostics.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
