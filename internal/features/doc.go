// Package features turns a corpus into the row-aligned feature matrix the
// cross-validated estimator consumes.
//
// Providers embed one sentence at a time and must return exactly one
// fixed-dimension vector per token. Build stacks those vectors into an N×D
// gonum matrix whose row i belongs to the token with global index i, and
// fails with an alignment error the moment a provider breaks that contract.
//
// Two providers ship with the package: HashedProvider, a lexical feature
// hasher that needs no model files, and precomputed vectors read from disk
// with LoadFile (for contextual embeddings generated outside this tool).
package features
