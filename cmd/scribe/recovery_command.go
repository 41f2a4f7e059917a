package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecoveryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recovery",
		Short: "Show jobs wiped by the most recent startup recovery",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			entries, err := client.Recovery(cmd.Context())
			if err != nil {
				return ctx.wrapErr(err)
			}

			stdout := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(stdout, "No recovery report available")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.ID,
					string(entry.PriorState),
					formatUnix(entry.RecoveredAt),
				})
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"Job", "Prior State", "Recovered At"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
