package history

import (
	"time"

	"labelaudit/internal/report"
)

// Run summarises one completed audit.
type Run struct {
	ID         string             `json:"id"`
	CorpusPath string             `json:"corpus_path"`
	CreatedAt  time.Time          `json:"created_at"`
	Tokens     int                `json:"tokens"`
	Sentences  int                `json:"sentences"`
	Classes    []string           `json:"classes"`
	Folds      int                `json:"folds"`
	Seed       uint64             `json:"seed"`
	Classifier string             `json:"classifier"`
	Provider   string             `json:"provider"`
	Thresholds map[string]float64 `json:"thresholds"`
	IssueCount int                `json:"issue_count"`
	Fallbacks  int                `json:"fallbacks"`
	Misses     int                `json:"misses"`
	Duration   time.Duration      `json:"duration"`
}

// Record is a run with its ranked issues.
type Record struct {
	Run    Run            `json:"run"`
	Issues []report.Issue `json:"issues"`
}
