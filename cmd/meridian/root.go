package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "meridian",
	Short: "Meridian - travel policy compliance engine",
	Long: `Meridian is a travel policy compliance engine with a temporally
versioned policy store.

It serves an HTTP API for travel request evaluation, providing:
  - Deterministic compliance verdicts for trip requests
  - Effective-dated policy versions with atomic activation
  - Point-in-time resolution of the governing policy
  - An append-only audit trail of every policy change

For more information, visit: https://github.com/atlashq/meridian`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
