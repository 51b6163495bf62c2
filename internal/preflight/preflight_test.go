package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"labelaudit/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFeatureFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	if err := os.WriteFile(good, []byte("\n0.1 0.2 0.3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckFeatureFile(good); !result.Passed || !strings.Contains(result.Detail, "dimension 3") {
		t.Fatalf("unexpected result %+v", result)
	}

	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckFeatureFile(empty); result.Passed {
		t.Fatal("expected failure for empty feature file")
	}
	if result := CheckFeatureFile(filepath.Join(dir, "missing.txt")); result.Passed {
		t.Fatal("expected failure for missing feature file")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestRunAll_FreshConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	results := RunAll(context.Background(), cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if Failed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}
	if !strings.Contains(results[2].Detail, "0 runs") {
		t.Fatalf("unexpected history detail %q", results[2].Detail)
	}
}

func TestRunAll_IncludesFeatureFileWhenConfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFeatureFile(filepath.Join(t.TempDir(), "absent.txt")))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	results := RunAll(context.Background(), cfg)
	last := results[len(results)-1]
	if last.Name != "Feature file" || last.Passed {
		t.Fatalf("expected failing feature file check, got %+v", last)
	}
	if !Failed(results) {
		t.Fatal("expected Failed to report the feature file")
	}
}
