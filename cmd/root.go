/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log/slog"
	"os"

	"github.com/sempr/run-constrained/internal/launcher"
	"github.com/sempr/run-constrained/pkg/constants"
	"github.com/spf13/cobra"
)

// rootCmd is the supervisor: it re-executes itself as the worker and stays
// around until the worker is gone or it is told to stop.
var rootCmd = &cobra.Command{
	Use:   "run-constrained <dir>/<script> [arg ...]",
	Short: "Run a submitted test script under a fixed identity and resource limits",
	Long: `run-constrained changes into the script's directory and replaces itself with
the test interpreter, running as the launcher's owner with a fixed environment
and hard limits on virtual memory, CPU time, output file size and resident
memory. Every argument after the script is passed to the interpreter as is.

Install it setuid/setgid to the account the untrusted code should run as.
Send SIGTERM to stop waiting; signal the process group to stop the script too.`,
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		invocation := append([]string{os.Args[0]}, args...)
		worker, err := launcher.WorkerCommand(constants.WorkerCommand, invocation)
		if err != nil {
			return err
		}
		outcome, err := launcher.NewSupervisor(worker).Run(cmd.Context())
		if err != nil {
			return err
		}
		slog.Debug("supervisor done", "outcome", outcome)
		return nil
	},
}

// Execute runs the command line. Any error that reaches here is fatal.
func Execute() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		slog.Error("run-constrained failed", "err", err)
		os.Exit(constants.ExitFailure)
	}
}
