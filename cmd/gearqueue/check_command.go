package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"gearqueue/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the queue database can be opened",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg, logger)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			if preflight.Failed(results) {
				return errors.New("queue checks failed")
			}
			return nil
		},
	}
}
