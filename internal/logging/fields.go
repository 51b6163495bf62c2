package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for audit run identifiers.
	FieldRunID = "run_id"
	// FieldFold is the standardized structured logging key for cross-validation fold numbers.
	FieldFold = "fold"
	// FieldEventType classifies a record for filtering (e.g. "locate_fallback").
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the reader of a warning.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
)
