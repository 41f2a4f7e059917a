package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/jobfiles"
)

func newFilesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List uploaded audio files and their job state",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			files, err := client.Files(cmd.Context())
			if err != nil {
				return ctx.wrapErr(err)
			}

			stdout := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(stdout, "No uploaded files")
				return nil
			}

			rows := make([][]string, 0, len(files))
			for _, file := range files {
				jobState := "-"
				progress := ""
				if rec, err := client.JobStatus(cmd.Context(), jobfiles.ID(file)); err == nil && rec != nil {
					jobState = string(rec.State)
					progress = fmt.Sprintf("%.0f%%", rec.Progress)
				}
				rows = append(rows, []string{file, jobState, progress})
			}

			fmt.Fprintln(stdout, renderTable(
				[]string{"File", "Job", "Progress"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}
