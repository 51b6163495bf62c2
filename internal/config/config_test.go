package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"labelaudit/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "labelaudit")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Estimator.Folds != 5 {
		t.Fatalf("unexpected default folds: %d", cfg.Estimator.Folds)
	}
	if cfg.Estimator.Seed != 42 {
		t.Fatalf("unexpected default seed: %d", cfg.Estimator.Seed)
	}
	if cfg.Estimator.Classifier != "logreg" {
		t.Fatalf("unexpected default classifier: %q", cfg.Estimator.Classifier)
	}
	if cfg.Report.Window != 10 {
		t.Fatalf("unexpected default window: %d", cfg.Report.Window)
	}
	if cfg.Features.Provider != "hashed" {
		t.Fatalf("unexpected default provider: %q", cfg.Features.Provider)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if filepath.Dir(cfg.HistoryPath()) != cfg.Paths.StateDir {
		t.Fatalf("history db outside state dir: %q", cfg.HistoryPath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "labelaudit.toml")

	type payload struct {
		Estimator struct {
			Folds      int    `toml:"folds"`
			Seed       uint64 `toml:"seed"`
			Classifier string `toml:"classifier"`
		} `toml:"estimator"`
		Report struct {
			Window int    `toml:"window"`
			Format string `toml:"format"`
		} `toml:"report"`
		Paths struct {
			StateDir string `toml:"state_dir"`
		} `toml:"paths"`
	}
	custom := payload{}
	custom.Estimator.Folds = 3
	custom.Estimator.Seed = 7
	custom.Estimator.Classifier = " Centroid "
	custom.Report.Window = 4
	custom.Report.Format = "JSON"
	custom.Paths.StateDir = filepath.Join(tempDir, "state")
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Estimator.Folds != 3 || cfg.Estimator.Seed != 7 {
		t.Fatalf("unexpected estimator settings: %+v", cfg.Estimator)
	}
	if cfg.Estimator.Classifier != "centroid" {
		t.Fatalf("expected classifier to be normalized, got %q", cfg.Estimator.Classifier)
	}
	if cfg.Report.Format != "json" || cfg.Report.Window != 4 {
		t.Fatalf("unexpected report settings: %+v", cfg.Report)
	}
	if cfg.Paths.StateDir != filepath.Join(tempDir, "state") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
}

func TestEnvOverridesStateDirAndLogLevel(t *testing.T) {
	stateDir := filepath.Join(t.TempDir(), "env-state")
	t.Setenv("LABELAUDIT_STATE_DIR", stateDir)
	t.Setenv("LABELAUDIT_LOG_LEVEL", "DEBUG")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.StateDir != stateDir {
		t.Fatalf("expected state dir from env, got %q", cfg.Paths.StateDir)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level from env, got %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"single fold", func(c *config.Config) { c.Estimator.Folds = 1 }, "estimator.folds"},
		{"negative workers", func(c *config.Config) { c.Estimator.Workers = -1 }, "estimator.workers"},
		{"unknown classifier", func(c *config.Config) { c.Estimator.Classifier = "forest" }, "estimator.classifier"},
		{"negative l2", func(c *config.Config) { c.Classifier.L2 = -1 }, "classifier.l2"},
		{"unknown provider", func(c *config.Config) { c.Features.Provider = "bert" }, "features.provider"},
		{"negative window", func(c *config.Config) { c.Report.Window = -1 }, "report.window"},
		{"negative limit", func(c *config.Config) { c.Report.Limit = -2 }, "report.limit"},
		{"unknown format", func(c *config.Config) { c.Report.Format = "html" }, "report.format"},
		{"unknown level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "labelaudit.toml")
	if err := os.WriteFile(configPath, []byte("[estimator]\nfoldz = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to fail parsing")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	t.Setenv("HOME", t.TempDir())
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Estimator.Folds != 5 || cfg.Report.Format != "table" {
		t.Fatalf("sample config diverged from defaults: %+v %+v", cfg.Estimator, cfg.Report)
	}
}
