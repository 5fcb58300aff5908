package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"atlashq/meridian/pkg/cli"
	"atlashq/meridian/pkg/config"
	"atlashq/meridian/pkg/policy/source"
)

var validateFlags struct {
	seedFile string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and seed files",
	Long: `Validate the server configuration file and, optionally, a policy
seed file.

The configuration file is checked against the same rules the server applies
on startup: listen address, storage backend, archival schedule, and telemetry
settings. A seed file is checked for structural validity and rule coherence
(non-negative thresholds, complete cap matrices, ordered class ceilings).

Examples:
  # Validate the default config file
  meridian validate

  # Validate a specific config file
  meridian validate --config /etc/meridian/config.yaml

  # Also validate a policy seed file
  meridian validate --seed policy-seed.yaml`,
	RunE: validateFiles,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.seedFile, "seed", "", "policy seed file to validate")
}

func validateFiles(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("invalid configuration: %v", err))
	}
	fmt.Printf("✓ Configuration valid: %s\n", cfgFile)
	if verbose {
		fmt.Printf("  listen address:  %s\n", cfg.Server.ListenAddress)
		fmt.Printf("  storage backend: %s\n", cfg.Storage.Backend)
		if cfg.Policy.SeedPath != "" {
			fmt.Printf("  policy seed:     %s\n", cfg.Policy.SeedPath)
		}
	}

	// Default to the configured seed when none is given explicitly
	seedPath := validateFlags.seedFile
	if seedPath == "" {
		seedPath = cfg.Policy.SeedPath
	}
	if seedPath == "" {
		return nil
	}

	seed, err := source.Load(seedPath)
	if err != nil {
		return cli.NewCommandError("validate", fmt.Errorf("invalid seed file %s: %w", seedPath, err))
	}
	fmt.Printf("✓ Seed file valid: %s\n", seedPath)
	if verbose {
		fmt.Printf("  actor: %s\n", seed.Actor)
		if seed.Note != "" {
			fmt.Printf("  note:  %s\n", seed.Note)
		}
	}

	return nil
}
