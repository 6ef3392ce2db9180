package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/opportunity-notes/internal/app"
	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
	"github.com/johnquangdev/opportunity-notes/internal/usecase/transcript"
)

func newNormalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize FILE",
		Short: "Print the cleaned text of a transcript file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			t, err := transcript.Load(args[0], data, entities.TranscriptMetadata{})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.CleanedText)
			return nil
		},
	}
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "transcribe AUDIO",
		Short: "Transcribe an audio file with TRANSCRIPTION_BACKEND",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				result, err := a.Transcriber.Transcribe(cmd.Context(), args[0], f)
				if err != nil {
					return err
				}
				if out == "" {
					fmt.Fprintln(cmd.OutOrStdout(), result.Text)
					return nil
				}
				if err := os.WriteFile(out, []byte(result.Text+"\n"), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the transcript to this file instead of stdout")

	return cmd
}
