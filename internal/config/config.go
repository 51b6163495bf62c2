package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Estimator contains cross-validation settings.
type Estimator struct {
	Folds      int    `toml:"folds"`
	Seed       uint64 `toml:"seed"`
	Workers    int    `toml:"workers"`
	Classifier string `toml:"classifier"`
}

// Classifier contains hyperparameters for the per-fold classifiers.
type Classifier struct {
	Epochs       int     `toml:"epochs"`
	LearningRate float64 `toml:"learning_rate"`
	L2           float64 `toml:"l2"`
	// Temperature scales squared distances in the centroid classifier.
	Temperature float64 `toml:"temperature"`
}

// Features selects how token feature vectors are produced.
type Features struct {
	// Provider is "hashed" (built-in lexical hashing) or "file" (precomputed vectors).
	Provider      string `toml:"provider"`
	Dim           int    `toml:"dim"`
	ContextWindow int    `toml:"context_window"`
	Path          string `toml:"path"`
}

// Report contains issue rendering settings.
type Report struct {
	Window int    `toml:"window"`
	Limit  int    `toml:"limit"`
	Format string `toml:"format"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for labelaudit.
//
// Configuration sections by subsystem:
//   - Paths: state (history database, run lock) and log directories
//   - Estimator: fold count, seed, worker limit, classifier name
//   - Classifier: per-fold model hyperparameters
//   - Features: feature provider selection
//   - Report: context window, issue limit, output format
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Estimator  Estimator  `toml:"estimator"`
	Classifier Classifier `toml:"classifier"`
	Features   Features   `toml:"features"`
	Report     Report     `toml:"report"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("labelaudit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the SQLite database that records audit runs.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the file lock guarding concurrent audit runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "labelaudit.lock")
}

// LogPath returns the log file written alongside console output.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "labelaudit.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
