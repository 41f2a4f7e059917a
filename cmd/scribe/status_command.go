package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scribe/internal/apiclient"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, dependency, and environment status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			daemonStatus, err := client.DaemonStatus(cmd.Context())
			if err != nil {
				return ctx.wrapErr(err)
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(stdout, line)
			}
			runningKind := statusError
			runningMsg := "not running"
			if daemonStatus.Running {
				runningKind = statusOK
				runningMsg = fmt.Sprintf("running (pid %d)", daemonStatus.PID)
			}
			fmt.Fprintln(stdout, renderStatusLine("Daemon", runningKind, runningMsg, colorize))
			fmt.Fprintln(stdout, renderStatusLine("Lock file", statusInfo, daemonStatus.LockFilePath, colorize))
			if daemonStatus.LedgerPath != "" {
				fmt.Fprintln(stdout, renderStatusLine("Run ledger", statusInfo, daemonStatus.LedgerPath, colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range dependencyLines(daemonStatus.Dependencies, colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Environment", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, check := range daemonStatus.Preflight {
				kind := boolKind(check.Passed)
				fmt.Fprintln(stdout, renderStatusLine(check.Name, kind, check.Detail, colorize))
			}
			return nil
		},
	}
}

func dependencyLines(deps []apiclient.DependencyStatus, colorize bool) []string {
	lines := make([]string, 0, len(deps)+1)
	missing := make([]string, 0)
	for _, dep := range deps {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		missing = append(missing, dep.Name)
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn,
			fmt.Sprintf("%s (see README.md for install steps)", strings.Join(missing, ", ")), colorize))
	}
	return lines
}
