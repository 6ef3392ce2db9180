package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/opportunity-notes/internal/app"
	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
	"github.com/johnquangdev/opportunity-notes/internal/usecase/crm"
)

func newPushCommand(ctx *commandContext) *cobra.Command {
	var (
		indexes   []int
		overwrite bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "push RUN_ID",
		Short: "Push a saved run's opportunity comments to Salesforce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				run, err := a.Notes.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				opts := crm.PushOptions{Indexes: indexes}
				if cmd.Flags().Changed("overwrite") {
					appendMode := !overwrite
					opts.AppendMode = &appendMode
				}

				outcomes, err := a.Pusher.PushRun(cmd.Context(), run, opts)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, outcomes)
				}
				printOutcomes(cmd, outcomes)
				return nil
			})
		},
	}

	cmd.Flags().IntSliceVar(&indexes, "index", nil, "Push only these note indexes (repeatable)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace the comments field instead of prepending")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print outcomes as JSON")

	return cmd
}

func printOutcomes(cmd *cobra.Command, outcomes []entities.PushOutcome) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tOPPORTUNITY\tSTATUS\tREASON\tDETAIL")
	for _, o := range outcomes {
		reason := string(o.Reason)
		if reason == "" {
			reason = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", o.Index, o.OpportunityRef, o.Status, reason, o.Detail)
	}
	_ = w.Flush()

	s := entities.Summarize(outcomes)
	fmt.Fprintf(cmd.OutOrStdout(), "%d updated, %d skipped, %d errors\n", s.Updated, s.Skipped, s.Errors)
}
