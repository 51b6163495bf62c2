// Package audit runs the label-error pipeline end to end.
//
// A run reads the corpus, builds the feature matrix, fixes the label
// vocabulary, estimates out-of-sample probabilities by cross-validation,
// flags suspected errors, and renders them as issue records. Run holds a
// file lock on the state directory so only one audit writes history at a
// time; Audit is the lock-free core used by Run and by tests.
package audit
