/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/sempr/run-constrained/internal/launcher"
	"github.com/sempr/run-constrained/internal/profile"
	"github.com/sempr/run-constrained/pkg/constants"
	"github.com/spf13/cobra"
)

// workerCmd is what the supervisor re-executes. Its arguments are the full
// invocation, starting with the launcher's own argv[0]. Run directly it
// refuses to do anything.
var workerCmd = &cobra.Command{
	Use:                constants.WorkerCommand + " <argv0> <dir>/<script> [arg ...]",
	Hidden:             true,
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	Run: func(cmd *cobra.Command, args []string) {
		// identity changes and execve must happen on one thread
		runtime.LockOSThread()

		if err := launcher.Supervised(); err != nil {
			slog.Error("worker must be started by the supervisor", "err", err)
			os.Exit(constants.ExitFailure)
		}

		prof, err := profile.Default()
		if err != nil {
			slog.Error("load profile", "err", err)
			os.Exit(constants.ExitFailure)
		}

		w := launcher.NewWorker(launcher.Host(), prof, slog.Default())
		err = w.Run(args)
		slog.Error("worker failed", "err", err)
		os.Exit(constants.ExitFailure)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
