package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/opportunity-notes/internal/app"
	"github.com/johnquangdev/opportunity-notes/internal/usecase/crm"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		dir     string
		archive bool
	)

	cmd := &cobra.Command{
		Use:   "export RUN_ID",
		Short: "Write a saved run's notes to a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				run, err := a.Notes.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				target := dir
				if target == "" {
					target = a.Config.Paths.OutputsDir
				}
				path, err := crm.WriteCSVFile(target, run.Notes, time.Now())
				if err != nil {
					return err
				}

				if archive {
					if a.Archive == nil {
						return fmt.Errorf("--archive needs ARCHIVE_ENABLED=true")
					}
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					if err := a.Archive.ArchiveExport(cmd.Context(), filepath.Base(path), data); err != nil {
						return err
					}
				}

				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default OUTPUTS_DIR)")
	cmd.Flags().BoolVar(&archive, "archive", false, "Also upload the CSV to archive storage")

	return cmd
}
