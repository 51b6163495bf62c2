package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"labelaudit/internal/config"
	"labelaudit/internal/history"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded audit runs",
	}
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent audit runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					if runs == nil {
						runs = []history.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No audit runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRunsTable(runs))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 lists all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var format string
	var limit int

	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show a recorded run and its issues (accepts a unique id prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *history.Store) error {
				record, err := store.Load(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if record == nil {
					return fmt.Errorf("run %s not found", args[0])
				}

				selected := cfg.Report.Format
				if cmd.Flags().Changed("format") {
					selected = strings.ToLower(strings.TrimSpace(format))
				}
				shown := cfg.Report.Limit
				if cmd.Flags().Changed("limit") {
					shown = limit
				}
				switch selected {
				case "json":
					record.Issues = limitIssues(record.Issues, shown)
					return writeJSON(cmd, record)
				case "table", "text":
					renderRecord(cmd, record.Run, record.Issues, selected, shown)
					return nil
				default:
					return fmt.Errorf("unsupported format %q (expected table, json, or text)", selected)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, json, or text")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many issues (0 shows all)")
	return cmd
}
