// Package preflight checks that the filesystem state an audit depends on is
// usable before any work starts: the state and log directories, the run
// history database, and the precomputed feature file when one is configured.
//
// "labelaudit config validate" prints every result; a failing check makes the
// command exit non-zero.
package preflight
