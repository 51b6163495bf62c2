package auditerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownLabel             = errors.New("unknown label")
	ErrInsufficientClassSamples = errors.New("insufficient class samples")
	ErrAlignmentMismatch        = errors.New("alignment mismatch")
	ErrInvalidProbabilities     = errors.New("invalid probabilities")
	ErrConfiguration            = errors.New("configuration error")
)

// InsufficientClassSamplesError reports the class that cannot be spread over
// every fold.
type InsufficientClassSamplesError struct {
	Class string
	Count int
	Folds int
}

func (e *InsufficientClassSamplesError) Error() string {
	return fmt.Sprintf("%s: class %q has %d examples, fewer than %d folds", ErrInsufficientClassSamples, e.Class, e.Count, e.Folds)
}

func (e *InsufficientClassSamplesError) Is(target error) bool {
	return target == ErrInsufficientClassSamples
}

// Wrap builds an error message that includes step context while tagging it
// with the provided marker. The marker should be one of the exported
// sentinels above.
func Wrap(marker error, step, operation, message string, err error) error {
	detail := buildDetail(step, operation, message)
	if marker == nil {
		marker = ErrConfiguration
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short classification of err for logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownLabel):
		return "unknown_label"
	case errors.Is(err, ErrInsufficientClassSamples):
		return "insufficient_class_samples"
	case errors.Is(err, ErrAlignmentMismatch):
		return "alignment_mismatch"
	case errors.Is(err, ErrInvalidProbabilities):
		return "invalid_probabilities"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "internal"
	}
}

func buildDetail(step, operation, message string) string {
	parts := make([]string, 0, 3)
	if step = strings.TrimSpace(step); step != "" {
		parts = append(parts, step)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
