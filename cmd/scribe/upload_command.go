package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload an audio file to the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			name, err := client.Upload(cmd.Context(), args[0])
			if err != nil {
				return ctx.wrapErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", name)
			return nil
		},
	}
}
