package main

import (
	"github.com/spf13/cobra"

	"github.com/johnquangdev/opportunity-notes/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return server.Run(cmd.Context(), cfg)
		},
	}
}
