package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/status"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show the status of a transcription job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			rec, err := client.JobStatus(cmd.Context(), args[0])
			if err != nil {
				return ctx.wrapErr(err)
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			if rec == nil {
				fmt.Fprintf(stdout, "No job named %s\n", args[0])
				return nil
			}

			fmt.Fprintln(stdout, renderStatusLine("State", stateKind(rec.State), string(rec.State), colorize))
			fmt.Fprintln(stdout, renderStatusLine("Progress", statusInfo, fmt.Sprintf("%.0f%%", rec.Progress), colorize))
			if rec.Step != "" {
				fmt.Fprintln(stdout, renderStatusLine("Step", statusInfo, rec.Step, colorize))
			}
			if rec.StartTime > 0 {
				fmt.Fprintln(stdout, renderStatusLine("Started", statusInfo, formatUnix(rec.StartTime), colorize))
			}
			if rec.LastUpdated > 0 {
				fmt.Fprintln(stdout, renderStatusLine("Updated", statusInfo, formatUnix(rec.LastUpdated), colorize))
			}
			if rec.Error != "" {
				fmt.Fprintln(stdout, renderStatusLine("Error", statusError, rec.Error, colorize))
			}
			for _, warning := range rec.Warnings {
				fmt.Fprintln(stdout, renderStatusLine("Warning", statusWarn, warning, colorize))
			}
			return nil
		},
	}
}

func stateKind(state status.State) statusKind {
	switch state {
	case status.StateComplete:
		return statusOK
	case status.StateProcessing:
		return statusInfo
	case status.StateStopped:
		return statusWarn
	default:
		return statusError
	}
}

func formatUnix(seconds float64) string {
	return time.Unix(int64(seconds), 0).Local().Format("2006-01-02 15:04:05")
}
