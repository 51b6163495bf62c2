package history_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"labelaudit/internal/history"
	"labelaudit/internal/report"
	"labelaudit/internal/testsupport"
)

func sampleRun(id string, created time.Time) history.Run {
	return history.Run{
		ID:         id,
		CorpusPath: "/data/train.conll",
		CreatedAt:  created,
		Tokens:     20,
		Sentences:  4,
		Classes:    []string{"A", "B"},
		Folds:      3,
		Seed:       1<<63 + 5,
		Classifier: "centroid",
		Provider:   "hashed",
		Thresholds: map[string]float64{"A": 0.8, "B": 0.75},
		Fallbacks:  1,
		Duration:   1500 * time.Millisecond,
	}
}

func sampleIssues() []report.Issue {
	return []report.Issue{
		{
			Rank: 1, Index: 6, SentenceID: 1, Token: "Mary", Original: "B-LOC", Suggested: "B-PER",
			Confidence: 0.02, Position: 1, Strategy: report.StrategyExact,
			Context:  []report.ContextToken{{Text: "hired", Label: "O"}, {Text: "Mary", Label: "B-LOC"}},
			Rendered: "hired [Mary: B-LOC → B-PER]",
		},
		{
			Rank: 2, Index: 9, SentenceID: 2, Token: "x", Original: "A", Suggested: "B",
			Confidence: 0.1, Strategy: report.StrategyNone, Context: []report.ContextToken{},
			Rendered: "[x: A → B]",
		},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := sampleRun("8f0c9a52-1111-4c1e-9a53-000000000001", created)
	if err := store.SaveRun(ctx, run, sampleIssues()); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	record, err := store.Load(ctx, run.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if record == nil {
		t.Fatal("expected stored run")
	}
	got := record.Run
	if got.Seed != run.Seed || got.Duration != run.Duration || !got.CreatedAt.Equal(created) {
		t.Fatalf("scalar fields did not round-trip: %+v", got)
	}
	if got.IssueCount != 2 || !reflect.DeepEqual(got.Classes, run.Classes) || !reflect.DeepEqual(got.Thresholds, run.Thresholds) {
		t.Fatalf("unexpected run %+v", got)
	}
	if !reflect.DeepEqual(record.Issues, sampleIssues()) {
		t.Fatalf("issues did not round-trip:\n got %+v\nwant %+v", record.Issues, sampleIssues())
	}
}

func TestGetRunByPrefix(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	now := time.Now()
	for _, id := range []string{"abc-111", "abd-222"} {
		if err := store.SaveRun(ctx, sampleRun(id, now), nil); err != nil {
			t.Fatalf("SaveRun %s: %v", id, err)
		}
	}

	run, err := store.GetRun(ctx, "abc")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run == nil || run.ID != "abc-111" {
		t.Fatalf("expected abc-111, got %+v", run)
	}
	if _, err := store.GetRun(ctx, "ab"); !errors.Is(err, history.ErrAmbiguousRunID) {
		t.Fatalf("expected ambiguous id error, got %v", err)
	}
	missing, err := store.GetRun(ctx, "zzz")
	if err != nil || missing != nil {
		t.Fatalf("expected nil run for unknown id, got %+v %v", missing, err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		if err := store.SaveRun(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Hour)), nil); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-c" || runs[1].ID != "run-b" {
		t.Fatalf("unexpected order: %+v", runs)
	}
	all, err := store.ListRuns(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d (%v)", len(all), err)
	}
}

func TestSaveRunRejectsDuplicateID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run := sampleRun("dup", time.Now())
	if err := store.SaveRun(ctx, run, sampleIssues()); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := store.SaveRun(ctx, run, nil); err == nil {
		t.Fatal("expected duplicate id error")
	}
	issues, err := store.Issues(ctx, "dup")
	if err != nil || len(issues) != 2 {
		t.Fatalf("expected original issues intact, got %d (%v)", len(issues), err)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.SaveRun(context.Background(), sampleRun("persist", time.Now()), nil); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	run, err := reopened.GetRun(context.Background(), "persist")
	if err != nil || run == nil {
		t.Fatalf("expected run after reopen, got %+v %v", run, err)
	}
}
