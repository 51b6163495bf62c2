// Package history persists audit runs and their ranked issues in SQLite.
//
// The database lives at <state_dir>/history.db. It is opened in WAL mode
// with foreign keys enforced, and writes retry briefly when another process
// holds the lock. The schema is versioned; a database written by a different
// schema version is rejected rather than migrated.
package history
