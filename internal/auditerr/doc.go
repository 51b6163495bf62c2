// Package auditerr defines the error taxonomy shared by the annotation audit
// pipeline.
//
// Every fatal condition the pipeline can detect is tagged with one of the
// exported sentinel markers so callers can branch with errors.Is regardless of
// how much context was wrapped around the failure:
//   - ErrUnknownLabel: a label or class id outside the vocabulary.
//   - ErrInsufficientClassSamples: a class too small to stratify across the
//     requested fold count.
//   - ErrAlignmentMismatch: feature rows, labels, or fold coverage disagree.
//   - ErrInvalidProbabilities: a classifier produced rows that are not
//     probability distributions.
//   - ErrConfiguration: unusable pipeline settings.
//
// Use Wrap when surfacing errors from a pipeline step so messages keep a
// consistent "step: operation: detail" shape.
package auditerr
