package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newResultCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "result <job-id>",
		Short: "Print the transcript of a completed job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			doc, err := client.Transcription(cmd.Context(), args[0])
			if err != nil {
				return ctx.wrapErr(err)
			}

			stdout := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(doc)
			}

			for _, segment := range doc.Segments {
				if segment.Speaker != "" {
					fmt.Fprintf(stdout, "[%s] %s\n", segment.Speaker, segment.Text)
					continue
				}
				fmt.Fprintln(stdout, segment.Text)
			}
			for _, warning := range doc.Metadata.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result document as JSON")
	return cmd
}
