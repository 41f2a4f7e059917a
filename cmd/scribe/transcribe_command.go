package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/status"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "transcribe <filename>",
		Short: "Start a transcription job for an uploaded file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			id, err := client.Transcribe(cmd.Context(), args[0])
			if err != nil {
				return ctx.wrapErr(err)
			}

			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "Job %s started\n", id)
			if !watch {
				return nil
			}

			lastStep := ""
			for {
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-time.After(time.Second):
				}

				rec, err := client.JobStatus(cmd.Context(), id)
				if err != nil {
					return ctx.wrapErr(err)
				}
				if rec == nil {
					return fmt.Errorf("job %s disappeared", id)
				}
				if rec.Step != lastStep {
					lastStep = rec.Step
					fmt.Fprintf(stdout, "  %3.0f%%  %s\n", rec.Progress, rec.Step)
				}
				if !rec.State.Terminal() && rec.State != status.StateError {
					continue
				}

				switch rec.State {
				case status.StateComplete:
					fmt.Fprintf(stdout, "Job %s complete\n", id)
					for _, warning := range rec.Warnings {
						fmt.Fprintf(stdout, "  warning: %s\n", warning)
					}
				case status.StateStopped:
					fmt.Fprintf(stdout, "Job %s stopped\n", id)
				case status.StateError:
					return fmt.Errorf("job %s failed: %s", id, rec.Error)
				}
				return nil
			}
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Poll job status until it finishes")
	return cmd
}
