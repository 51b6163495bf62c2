// Package issues applies the confident-learning rule to out-of-sample
// probabilities and ranks tokens whose gold label is likely wrong.
//
// A token is flagged when the model's confidence in its gold label falls
// below that label's mean self-confidence while some other class clears its
// own threshold. Flags are ordered by ascending self-confidence, ties by
// ascending global index, so results are stable across runs.
package issues
