package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/opportunity-notes/internal/app"
	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
	"github.com/johnquangdev/opportunity-notes/internal/usecase/crm"
	"github.com/johnquangdev/opportunity-notes/internal/usecase/transcript"
	pkgvalidator "github.com/johnquangdev/opportunity-notes/pkg/validator"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		metadataPath string
		md           entities.TranscriptMetadata
		source       string
		export       bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "generate FILE...",
		Short: "Generate opportunity notes for transcript files and save the run",
		Long: "Generate opportunity notes for .txt, .vtt or .srt transcripts.\n" +
			"Metadata flags apply to every file; --metadata reads a JSON array with one object per file.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			md.Source = entities.Source(source)
			perFile, err := loadMetadata(metadataPath, md, len(args))
			if err != nil {
				return err
			}

			transcripts := make([]entities.Transcript, 0, len(args))
			for i, path := range args {
				t, err := loadTranscript(path, perFile[i])
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
					t = transcript.Unreadable(path, perFile[i], err)
				}
				transcripts = append(transcripts, t)
			}

			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				run, err := a.Notes.GenerateRun(cmd.Context(), transcripts)
				if err != nil {
					return err
				}

				if export {
					path, err := crm.WriteCSVFile(a.Config.Paths.OutputsDir, run.Notes, time.Now())
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s\n", path)
				}

				if asJSON {
					return writeJSON(cmd, run)
				}
				printRun(cmd, run)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&metadataPath, "metadata", "", "JSON file with an array of metadata objects, one per file")
	cmd.Flags().StringVar(&md.OpportunityName, "opportunity-name", "", "Opportunity name")
	cmd.Flags().StringVar(&md.AccountName, "account", "", "Account name")
	cmd.Flags().StringVar(&md.OpportunityID, "opportunity-id", "", "Salesforce Opportunity Id (15 or 18 chars)")
	cmd.Flags().StringVar(&md.CallDate, "call-date", "", "Call date, YYYY-MM-DD")
	cmd.Flags().StringVar(&source, "source", "", "Transcript source: gong, zoom or other")
	cmd.Flags().StringVar(&md.Owner, "owner", "", "Note owner; initials head the comments entry")
	cmd.Flags().StringVar(&md.Stage, "stage", "", "Opportunity stage")
	cmd.Flags().BoolVar(&export, "export", false, "Also write a CSV export to OUTPUTS_DIR")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full run as JSON")

	return cmd
}

func loadTranscript(path string, md entities.TranscriptMetadata) (entities.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entities.Transcript{}, fmt.Errorf("read %s: %w", path, err)
	}
	t, err := transcript.Load(path, data, md)
	if err != nil {
		return entities.Transcript{}, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// loadMetadata returns one metadata entry per file. Entries from path win over the shared flags.
func loadMetadata(path string, shared entities.TranscriptMetadata, files int) ([]entities.TranscriptMetadata, error) {
	out := make([]entities.TranscriptMetadata, files)
	for i := range out {
		out[i] = shared
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read metadata: %w", err)
		}
		var list []entities.TranscriptMetadata
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("metadata must be a JSON array of objects: %w", err)
		}
		if len(list) > files {
			return nil, fmt.Errorf("metadata has %d entries for %d files", len(list), files)
		}
		copy(out, list)
	}

	v := pkgvalidator.New()
	for i := range out {
		if err := v.Validate(&out[i]); err != nil {
			return nil, fmt.Errorf("metadata[%d]: %w", i, err)
		}
	}
	return out, nil
}
