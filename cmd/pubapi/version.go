package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pubapi/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	// Version needs neither the repository nor the configuration.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cli.stdout, version.Full())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
