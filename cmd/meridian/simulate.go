package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"atlashq/meridian/pkg/cli"
	"atlashq/meridian/pkg/policy"
	"atlashq/meridian/pkg/policy/engine"
	"atlashq/meridian/pkg/policy/source"
	"atlashq/meridian/pkg/telemetry/logging"
)

var simulateFlags struct {
	tripFile string
	seedFile string
	at       string
	format   string
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Evaluate a trip request locally",
	Long: `Evaluate a trip request against a policy configuration without a
running server.

The trip request is read from a JSON file. The policy configuration comes
from a seed file when --seed is given, otherwise the built-in baseline
policy is used. The verdict is printed but nothing is persisted, exactly
like the server's /v1/simulate endpoint.

Trip file format (JSON):
  {
    "employeeGrade": "manager",
    "tripType": "international",
    "departureDate": "2026-10-12",
    "returnDate": "2026-10-16",
    "travelClass": "business",
    "estimatedCost": 3200,
    "currency": "USD"
  }

Examples:
  # Evaluate against the baseline policy
  meridian simulate --trip trip.json

  # Evaluate against a seed file
  meridian simulate --trip trip.json --seed policy-seed.yaml

  # Evaluate as of a specific instant
  meridian simulate --trip trip.json --at 2026-09-01T00:00:00Z

  # Machine-readable output
  meridian simulate --trip trip.json --format json`,
	RunE: simulateTrip,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simulateFlags.tripFile, "trip", "", "trip request JSON file (required)")
	simulateCmd.Flags().StringVar(&simulateFlags.seedFile, "seed", "", "policy seed file (default: built-in baseline)")
	simulateCmd.Flags().StringVar(&simulateFlags.at, "at", "", "evaluation instant (RFC3339, default: now)")
	simulateCmd.Flags().StringVar(&simulateFlags.format, "format", "text", "output format: text, json")
	simulateCmd.MarkFlagRequired("trip")
}

func simulateTrip(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(simulateFlags.tripFile)
	if err != nil {
		return cli.NewCommandError("simulate", fmt.Errorf("failed to read trip file: %w", err))
	}

	var trip engine.TripRequest
	if err := json.Unmarshal(data, &trip); err != nil {
		return cli.NewCommandError("simulate", fmt.Errorf("failed to parse trip file: %w", err))
	}

	// Resolve the policy configuration
	cfg := policy.Baseline()
	policyVersion := "baseline"
	if simulateFlags.seedFile != "" {
		seed, err := source.Load(simulateFlags.seedFile)
		if err != nil {
			return cli.NewCommandError("simulate", fmt.Errorf("invalid seed file: %w", err))
		}
		cfg = seed.Config
		policyVersion = "seed-preview"
	}

	// Resolve the evaluation instant
	at := time.Now().UTC()
	if simulateFlags.at != "" {
		at, err = time.Parse(time.RFC3339, simulateFlags.at)
		if err != nil {
			return cli.NewCommandError("simulate", fmt.Errorf("invalid --at instant: %w", err))
		}
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{Level: level, Format: "text", Writer: os.Stderr})
	if err != nil {
		return cli.NewCommandError("simulate", err)
	}

	evaluator := engine.NewEvaluator(logger)
	result := evaluator.Evaluate(trip, policyVersion, cfg, at)

	if simulateFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, result)
	}

	fmt.Printf("Policy version: %s\n", result.PolicyVersion)
	fmt.Printf("Evaluated at:   %s\n", result.EvaluatedAt.Format(time.RFC3339))
	fmt.Printf("Verdict:        %s\n", result.Level)
	if len(result.Findings) == 0 {
		fmt.Println("\nNo findings. The trip is compliant.")
		return nil
	}

	fmt.Printf("\nFindings (%d):\n", len(result.Findings))
	for _, f := range result.Findings {
		fmt.Printf("  [%s] %s: %s\n", f.Level, f.Code, f.Message)
	}

	if result.Blocked() {
		fmt.Println("\nThe trip would be blocked from submission.")
	}
	return nil
}
