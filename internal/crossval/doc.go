// Package crossval produces out-of-sample class probabilities for every
// token by stratified k-fold cross-validation.
//
// Each fold trains a fresh classifier from the configured factory on the
// complement of the fold and predicts the held-out rows. Folds run in
// parallel and return independent result objects which are scattered into
// the final N×K matrix by global index. The merge verifies that every row
// was written exactly once and that each row is a probability distribution.
package crossval
