package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// These variables are set via ldflags during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display version information for the shipit CLI.

This shows the version number, git commit SHA, and build date.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "shipit version %s\n", Version)
			if Commit != "" && Commit != "unknown" {
				fmt.Fprintf(out, "commit: %s\n", Commit)
			}
			if BuildDate != "" && BuildDate != "unknown" {
				fmt.Fprintf(out, "built at: %s\n", BuildDate)
			}
			return nil
		},
	}
}
