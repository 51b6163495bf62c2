package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"labelaudit/internal/report"
)

// ErrAmbiguousRunID is returned when a run id prefix matches several runs.
var ErrAmbiguousRunID = errors.New("ambiguous run id")

// createdAtLayout has fixed-width fractional seconds so stored timestamps
// sort lexically.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, corpus_path, created_at, tokens, sentences, classes_json, folds, seed, classifier, provider, thresholds_json, issue_count, fallbacks, misses, duration_ms"

// SaveRun stores run and its issues in one transaction.
func (s *Store) SaveRun(ctx context.Context, run Run, issues []report.Issue) error {
	if run.ID == "" {
		return errors.New("save run: missing id")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	classesJSON, err := json.Marshal(run.Classes)
	if err != nil {
		return fmt.Errorf("marshal classes: %w", err)
	}
	thresholdsJSON, err := json.Marshal(run.Thresholds)
	if err != nil {
		return fmt.Errorf("marshal thresholds: %w", err)
	}

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin run tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.CorpusPath,
			run.CreatedAt.UTC().Format(createdAtLayout),
			run.Tokens,
			run.Sentences,
			string(classesJSON),
			run.Folds,
			int64(run.Seed),
			run.Classifier,
			run.Provider,
			string(thresholdsJSON),
			len(issues),
			run.Fallbacks,
			run.Misses,
			run.Duration.Milliseconds(),
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO issues (
                run_id, rank, token_index, sentence_id, token, original, suggested,
                confidence, position, strategy, context_json, rendered
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare issue insert: %w", err)
		}
		defer stmt.Close()

		for _, issue := range issues {
			contextJSON, err := json.Marshal(issue.Context)
			if err != nil {
				return fmt.Errorf("marshal context for issue %d: %w", issue.Rank, err)
			}
			if _, err := stmt.ExecContext(ctx,
				run.ID,
				issue.Rank,
				issue.Index,
				issue.SentenceID,
				issue.Token,
				issue.Original,
				issue.Suggested,
				issue.Confidence,
				issue.Position,
				string(issue.Strategy),
				string(contextJSON),
				issue.Rendered,
			); err != nil {
				return fmt.Errorf("insert issue %d: %w", issue.Rank, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit run: %w", err)
		}
		return nil
	})
}

// ListRuns returns the most recent runs first. A non-positive limit returns
// every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun resolves a full run id or a unique prefix of one. It returns nil
// when nothing matches.
func (s *Store) GetRun(ctx context.Context, idOrPrefix string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY id LIMIT 2`,
		idOrPrefix, stripLikeWildcards(idOrPrefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if run.ID == idOrPrefix {
			return &run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q matches more than one run", ErrAmbiguousRunID, idOrPrefix)
	}
}

// Issues returns the ranked issues recorded for runID.
func (s *Store) Issues(ctx context.Context, runID string) ([]report.Issue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rank, token_index, sentence_id, token, original, suggested,
                confidence, position, strategy, context_json, rendered
         FROM issues WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("query issues: %w", err)
	}
	defer rows.Close()

	issues := []report.Issue{}
	for rows.Next() {
		var (
			issue       report.Issue
			strategy    string
			contextJSON string
		)
		if err := rows.Scan(
			&issue.Rank,
			&issue.Index,
			&issue.SentenceID,
			&issue.Token,
			&issue.Original,
			&issue.Suggested,
			&issue.Confidence,
			&issue.Position,
			&strategy,
			&contextJSON,
			&issue.Rendered,
		); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issue.Strategy = report.Strategy(strategy)
		if err := json.Unmarshal([]byte(contextJSON), &issue.Context); err != nil {
			return nil, fmt.Errorf("decode context for issue %d: %w", issue.Rank, err)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// Load returns a run together with its issues, or nil when it does not exist.
func (s *Store) Load(ctx context.Context, idOrPrefix string) (*Record, error) {
	run, err := s.GetRun(ctx, idOrPrefix)
	if err != nil || run == nil {
		return nil, err
	}
	issues, err := s.Issues(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	return &Record{Run: *run, Issues: issues}, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run            Run
		createdRaw     string
		classesJSON    string
		seed           int64
		thresholdsJSON string
		durationMS     int64
	)
	if err := scanner.Scan(
		&run.ID,
		&run.CorpusPath,
		&createdRaw,
		&run.Tokens,
		&run.Sentences,
		&classesJSON,
		&run.Folds,
		&seed,
		&run.Classifier,
		&run.Provider,
		&thresholdsJSON,
		&run.IssueCount,
		&run.Fallbacks,
		&run.Misses,
		&durationMS,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Seed = uint64(seed)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		run.CreatedAt = created
	}
	if err := json.Unmarshal([]byte(classesJSON), &run.Classes); err != nil {
		return Run{}, fmt.Errorf("decode classes for run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(thresholdsJSON), &run.Thresholds); err != nil {
		return Run{}, fmt.Errorf("decode thresholds for run %s: %w", run.ID, err)
	}
	return run, nil
}

func stripLikeWildcards(value string) string {
	out := make([]rune, 0, len(value))
	for _, r := range value {
		if r == '%' || r == '_' || r == '\\' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
