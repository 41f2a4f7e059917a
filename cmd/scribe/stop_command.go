package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <job-id>",
		Short: "Request a cooperative stop for a processing job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.Stop(cmd.Context(), args[0]); err != nil {
				return ctx.wrapErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stop requested for %s; the job halts at its next step boundary\n", args[0])
			return nil
		},
	}
}
