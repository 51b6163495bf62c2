package preflight

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"labelaudit/internal/config"
	"labelaudit/internal/history"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckHistory opens the history database, which also verifies its schema
// version, and reports how many runs it holds.
func CheckHistory(ctx context.Context, cfg *config.Config) Result {
	const name = "History database"
	store, err := history.Open(cfg)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.HistoryPath(), err)}
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", store.Path(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d runs)", store.Path(), len(runs))}
}

// CheckFeatureFile verifies the precomputed feature file is readable and
// reports the vector dimension of its first row.
func CheckFeatureFile(path string) Result {
	const name = "Feature file"
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "(error: features.path is empty)"}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	file, err := os.Open(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if fields := strings.Fields(scanner.Text()); len(fields) > 0 {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (dimension %d)", path, len(fields))}
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Detail: fmt.Sprintf("%s (error: no feature rows)", path)}
}
