package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"labelaudit/internal/history"
	"labelaudit/internal/report"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 12
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", message)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// renderRunSummary describes a run in aligned status lines.
func renderRunSummary(run history.Run, colorize bool) []string {
	lines := renderSectionHeader("Run "+run.ID, colorize)
	lines = append(lines,
		renderStatusLine("Corpus", statusInfo, fmt.Sprintf("%s (%d tokens, %d sentences)", run.CorpusPath, run.Tokens, run.Sentences), colorize),
		renderStatusLine("Estimator", statusInfo, fmt.Sprintf("%s, %d folds, seed %d, %s features", run.Classifier, run.Folds, run.Seed, run.Provider), colorize),
		renderStatusLine("Thresholds", statusInfo, formatThresholds(run.Classes, run.Thresholds), colorize),
	)
	issueKind := statusOK
	if run.IssueCount > 0 {
		issueKind = statusWarn
	}
	lines = append(lines, renderStatusLine("Issues", issueKind, strconv.Itoa(run.IssueCount), colorize))
	if run.Fallbacks > 0 || run.Misses > 0 {
		lines = append(lines, renderStatusLine("Locate", statusWarn,
			fmt.Sprintf("%d text fallbacks, %d misses", run.Fallbacks, run.Misses), colorize))
	}
	lines = append(lines, renderStatusLine("Duration", statusInfo, run.Duration.String(), colorize))
	return lines
}

func formatThresholds(classes []string, thresholds map[string]float64) string {
	if len(thresholds) == 0 {
		return "-"
	}
	names := classes
	if len(names) == 0 {
		for name := range thresholds {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%.3f", name, thresholds[name]))
	}
	return strings.Join(parts, " ")
}

func renderIssueTable(list []report.Issue) string {
	headers := []string{"Rank", "Index", "Sent", "Token", "Given", "Suggested", "Conf", "Context"}
	aligns := []columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
	rows := make([][]string, 0, len(list))
	for _, issue := range list {
		rows = append(rows, []string{
			strconv.Itoa(issue.Rank),
			strconv.Itoa(issue.Index),
			strconv.Itoa(issue.SentenceID),
			issue.Token,
			issue.Original,
			issue.Suggested,
			fmt.Sprintf("%.3f", issue.Confidence),
			issue.Rendered,
		})
	}
	return renderTable(headers, rows, aligns)
}

// renderIssueText prints one block per issue with the annotation highlighted.
func renderIssueText(list []report.Issue, colorize bool) []string {
	lines := make([]string, 0, len(list)*2)
	for _, issue := range list {
		lines = append(lines, fmt.Sprintf("#%d  token %d  sentence %d  confidence %.3f  %s -> %s",
			issue.Rank, issue.Index, issue.SentenceID, issue.Confidence, issue.Original, issue.Suggested))
		rendered := issue.Rendered
		if colorize {
			mark := fmt.Sprintf("[%s: %s → %s]", issue.Token, issue.Original, issue.Suggested)
			rendered = strings.Replace(rendered, mark, ansiYellow+mark+ansiReset, 1)
		}
		if issue.Strategy != report.StrategyExact {
			rendered += fmt.Sprintf("  (located: %s)", issue.Strategy)
		}
		lines = append(lines, statusIndent+rendered)
	}
	return lines
}

func renderRunsTable(runs []history.Run) string {
	headers := []string{"ID", "Created", "Corpus", "Tokens", "Classes", "Folds", "Classifier", "Issues"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignRight}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		id := run.ID
		if len(id) > 8 {
			id = id[:8]
		}
		rows = append(rows, []string{
			id,
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			filepath.Base(run.CorpusPath),
			strconv.Itoa(run.Tokens),
			strconv.Itoa(len(run.Classes)),
			strconv.Itoa(run.Folds),
			run.Classifier,
			strconv.Itoa(run.IssueCount),
		})
	}
	return renderTable(headers, rows, aligns)
}

func limitIssues(list []report.Issue, limit int) []report.Issue {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

func writeLines(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// writeJSON prints v as indented JSON on the command's output.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
