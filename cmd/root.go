package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "contribfeed",
		Short: "Open-source contribution aggregation service",
		Long: `A service that aggregates open-source contributions from GitHub,
Gerrit, and Stack Exchange into one timeline, and serves it over a
small JSON API together with an activity heatmap.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Add serve flags to root command so `contribfeed` and
	// `contribfeed serve` work identically
	addServeFlags(rootCmd, opts)

	// Register subcommands
	rootCmd.AddCommand(NewCmdServe(opts))
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}
