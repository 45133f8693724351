/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/sempr/run-constrained/internal/profile"
	"github.com/spf13/cobra"
)

// profileCmd prints the compiled-in profile so a build can be checked
// before it is installed setuid.
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the built-in interpreter, environment and limits as TOML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prof, err := profile.Default()
		if err != nil {
			return err
		}
		data, err := prof.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
