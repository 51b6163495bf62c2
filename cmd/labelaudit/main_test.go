package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"labelaudit/internal/testsupport"
)

type cliTestEnv struct {
	configPath string
	corpusPath string
	baseDir    string
	swapped    testsupport.Swapped
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	swapped := testsupport.SwappedCorpus()
	env := &cliTestEnv{
		configPath: filepath.Join(base, "config.toml"),
		corpusPath: testsupport.WriteCorpus(t, filepath.Join(base, "data"), swapped.Corpus),
		baseDir:    base,
		swapped:    swapped,
	}
	writeTestConfig(t, env.configPath, base)
	return env
}

func writeTestConfig(t *testing.T, path, base string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q

[estimator]
folds = 3
classifier = "centroid"
workers = 2

[logging]
level = "error"
`, filepath.Join(base, "state"), filepath.Join(base, "logs"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, filepath.Join(env.baseDir, "state", "history.db"))
	requireContains(t, out, "History database")
	requireContains(t, out, "(0 runs)")

	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, target); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}

func TestConfigValidateReportsMissingFeatureFile(t *testing.T) {
	env := setupCLITestEnv(t)
	f, err := os.OpenFile(env.configPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	missing := filepath.Join(env.baseDir, "missing.txt")
	if _, err := fmt.Fprintf(f, "\n[features]\nprovider = \"file\"\npath = %q\n", missing); err != nil {
		t.Fatalf("append config: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close config: %v", err)
	}

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err == nil {
		t.Fatal("expected validate to fail when the feature file is missing")
	}
	requireContains(t, out, "Feature file")
	requireContains(t, out, "not readable")
}

func TestAuditCommandRecordsRun(t *testing.T) {
	env := setupCLITestEnv(t)
	featurePath := testsupport.WriteFeatures(t, env.baseDir, env.swapped.Features)

	out, _, err := runCLI(t, []string{"audit", env.corpusPath, "--features", featurePath}, env.configPath)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	requireContains(t, out, "Issues:")
	requireContains(t, out, "[Reuters: LOC → ORG]")

	out, _, err = runCLI(t, []string{"runs", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	var runs []struct {
		ID         string `json:"id"`
		IssueCount int    `json:"issue_count"`
	}
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].IssueCount == 0 {
		t.Fatalf("unexpected runs %+v", runs)
	}

	out, _, err = runCLI(t, []string{"runs", "show", runs[0].ID[:8], "--format", "text"}, env.configPath)
	if err != nil {
		t.Fatalf("runs show: %v", err)
	}
	requireContains(t, out, runs[0].ID)
	requireContains(t, out, "#1  token 6")

	table, _, err := runCLI(t, []string{"runs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list table: %v", err)
	}
	requireContains(t, table, runs[0].ID[:8])
	requireContains(t, table, "corpus.conll")
}

func TestAuditCommandJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	featurePath := testsupport.WriteFeatures(t, env.baseDir, env.swapped.Features)

	out, _, err := runCLI(t, []string{"audit", env.corpusPath, "--features", featurePath, "--format", "json", "--no-save"}, env.configPath)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	var payload struct {
		Run struct {
			Provider string `json:"provider"`
		} `json:"run"`
		Issues []struct {
			Index     int    `json:"index"`
			Original  string `json:"original"`
			Suggested string `json:"suggested"`
		} `json:"issues"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode audit output: %v\n%s", err, out)
	}
	if payload.Run.Provider != "file" || len(payload.Issues) == 0 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	first := payload.Issues[0]
	if first.Index != env.swapped.Index || first.Original != "LOC" || first.Suggested != "ORG" {
		t.Fatalf("unexpected first issue %+v", first)
	}

	out, _, err = runCLI(t, []string{"runs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, "No audit runs recorded")
}

func TestAuditCommandReportsInsufficientSamples(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"audit", env.corpusPath, "--folds", "7", "--no-save"}, env.configPath)
	if err == nil {
		t.Fatal("expected audit to fail")
	}
	requireContains(t, err.Error(), "hint: lower --folds")
}

func TestAuditCommandRejectsBadFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"audit", env.corpusPath, "--classifier", "forest"}, env.configPath); err == nil {
		t.Fatal("expected unknown classifier to fail")
	}
	if _, _, err := runCLI(t, []string{"audit", env.corpusPath, "--format", "xml"}, env.configPath); err == nil {
		t.Fatal("expected unknown format to fail")
	}
	if _, _, err := runCLI(t, []string{"runs", "show", "missing"}, env.configPath); err == nil {
		t.Fatal("expected unknown run to fail")
	}
}
