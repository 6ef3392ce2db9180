package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/opportunity-notes/internal/app"
	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect saved runs",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				runs, err := a.Notes.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs saved")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "RUN\tCREATED\tMODEL\tNOTES\tFAILED")
				for _, r := range runs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", r.RunID, r.CreatedAt.Format("2006-01-02 15:04"), r.ModelName, r.NoteCount, r.Failed)
				}
				return w.Flush()
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")

	show := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Print a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				run, err := a.Notes.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, run)
			})
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

// printRun writes a one-line-per-note summary of run
func printRun(cmd *cobra.Command, run *entities.RunResult) {
	summary := run.Summary()
	fmt.Fprintf(cmd.OutOrStdout(), "Run %s (%s): %d notes, %d failed\n", run.RunID, run.ModelName, summary.NoteCount, summary.Failed)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tOPPORTUNITY\tACCOUNT\tCONFIDENCE\tSTATUS")
	for i, n := range run.Notes {
		status := "ok"
		if n.Failed() {
			status = "failed: " + n.Error
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i, n.OpportunityName, n.AccountName, n.Confidence, status)
	}
	_ = w.Flush()
}
