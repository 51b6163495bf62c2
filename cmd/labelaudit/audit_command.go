package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"labelaudit/internal/audit"
	"labelaudit/internal/auditerr"
	"labelaudit/internal/config"
	"labelaudit/internal/corpus"
	"labelaudit/internal/crossval"
	"labelaudit/internal/history"
	"labelaudit/internal/report"
)

type auditOptions struct {
	folds      int
	seed       uint64
	classifier string
	features   string
	format     string
	limit      int
	noSave     bool
}

type auditOutput struct {
	Run    history.Run          `json:"run"`
	Read   corpus.ReadStats     `json:"read"`
	Folds  []crossval.FoldStats `json:"folds"`
	Locate report.Stats         `json:"locate"`
	Issues []report.Issue       `json:"issues"`
}

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var opts auditOptions

	cmd := &cobra.Command{
		Use:   "audit CORPUS",
		Short: "Rank tokens whose labels look wrong",
		Long: `Audit reads a token-per-line corpus (token first, label last, blank lines
between sentences), estimates out-of-sample label probabilities with
stratified cross-validation, and lists tokens whose given label the models
consistently disagree with.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCfg, err := applyAuditFlags(cmd, *cfg, opts)
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			var store *history.Store
			if !opts.noSave {
				store, err = history.Open(runCfg)
				if err != nil {
					return fmt.Errorf("open history: %w", err)
				}
				defer store.Close()
			}

			runner, err := audit.NewRunner(runCfg, store, logger)
			if err != nil {
				return err
			}
			res, err := runner.Run(cmd.Context(), args[0])
			if err != nil {
				return describeAuditError(err)
			}

			if runCfg.Report.Format == "json" {
				return writeJSON(cmd, auditOutput{
					Run:    res.Run,
					Read:   res.Read,
					Folds:  res.Folds,
					Locate: res.Locate,
					Issues: limitIssues(res.Issues, runCfg.Report.Limit),
				})
			}
			out := cmd.OutOrStdout()
			if res.Read.Skipped > 0 {
				fmt.Fprintf(out, "Skipped %d malformed lines\n", res.Read.Skipped)
			}
			renderRecord(cmd, res.Run, res.Issues, runCfg.Report.Format, runCfg.Report.Limit)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.folds, "folds", 0, "Number of cross-validation folds (overrides config)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Random seed for fold assignment and models (overrides config)")
	cmd.Flags().StringVar(&opts.classifier, "classifier", "", "Classifier: logreg or centroid (overrides config)")
	cmd.Flags().StringVar(&opts.features, "features", "", "Precomputed feature file, one vector per token")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: table, json, or text")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", -1, "Show at most this many issues (0 shows all)")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "Do not record the run in history")
	return cmd
}

// applyAuditFlags returns a copy of cfg with command-line overrides applied
// and revalidated.
func applyAuditFlags(cmd *cobra.Command, cfg config.Config, opts auditOptions) (*config.Config, error) {
	flags := cmd.Flags()
	if flags.Changed("folds") {
		cfg.Estimator.Folds = opts.folds
	}
	if flags.Changed("seed") {
		cfg.Estimator.Seed = opts.seed
	}
	if flags.Changed("classifier") {
		cfg.Estimator.Classifier = strings.ToLower(strings.TrimSpace(opts.classifier))
	}
	if flags.Changed("features") {
		path, err := config.ExpandPath(opts.features)
		if err != nil {
			return nil, fmt.Errorf("resolve features path: %w", err)
		}
		cfg.Features.Provider = "file"
		cfg.Features.Path = path
	}
	if flags.Changed("format") {
		cfg.Report.Format = strings.ToLower(strings.TrimSpace(opts.format))
	}
	if flags.Changed("limit") {
		cfg.Report.Limit = opts.limit
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func describeAuditError(err error) error {
	var insufficient *auditerr.InsufficientClassSamplesError
	switch {
	case errors.As(err, &insufficient):
		return fmt.Errorf("%w\nhint: lower --folds to at most %d or add more %q examples", err, insufficient.Count, insufficient.Class)
	case errors.Is(err, audit.ErrRunInProgress):
		return fmt.Errorf("%w\nhint: wait for the other audit to finish", err)
	default:
		return err
	}
}

// renderRecord prints a run summary followed by its issues.
func renderRecord(cmd *cobra.Command, run history.Run, list []report.Issue, format string, limit int) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	writeLines(out, renderRunSummary(run, colorize))

	shown := limitIssues(list, limit)
	if len(shown) == 0 {
		fmt.Fprintln(out, "No suspected label errors")
		return
	}
	fmt.Fprintln(out)
	switch format {
	case "text":
		writeLines(out, renderIssueText(shown, colorize))
	default:
		fmt.Fprintln(out, renderIssueTable(shown))
	}
	if len(shown) < len(list) {
		fmt.Fprintf(out, "Showing %d of %d issues\n", len(shown), len(list))
	}
}
