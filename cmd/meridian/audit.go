package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"atlashq/meridian/pkg/audit/export"
	"atlashq/meridian/pkg/cli"
	"atlashq/meridian/pkg/config"
	"atlashq/meridian/pkg/telemetry/logging"
)

var auditFlags struct {
	output  string
	archive string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Work with the policy audit trail",
	Long: `Inspect and export the append-only audit trail of policy changes.

Subcommands:
  export  - Export audit events as JSON Lines or into an archive database

Examples:
  # Export the full trail to stdout
  meridian audit export

  # Export to a file
  meridian audit export --output audit.jsonl

  # Archive into a SQLite database (idempotent, safe to re-run)
  meridian audit export --archive audit-archive.db`,
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export audit events",
	Long: `Export audit events from the configured policy store.

Without --archive, events are written oldest-first as JSON Lines, one event
per line. With --archive, events are copied into a SQLite archive database;
events already archived are skipped, so repeated runs are safe.

Examples:
  # Export the full trail to stdout
  meridian audit export

  # Export to a file
  meridian audit export --output audit.jsonl

  # Archive into a SQLite database
  meridian audit export --archive audit-archive.db`,
	RunE: exportAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditExportCmd)

	auditExportCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default: stdout)")
	auditExportCmd.Flags().StringVar(&auditFlags.archive, "archive", "", "archive database path (instead of JSON Lines output)")
}

func exportAudit(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{Level: level, Format: "text", Writer: os.Stderr})
	if err != nil {
		return cli.NewCommandError("audit export", err)
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		return cli.NewCommandError("audit export", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	events, err := st.ListAuditEvents(ctx)
	if err != nil {
		return cli.NewCommandError("audit export", fmt.Errorf("failed to read audit trail: %w", err))
	}

	if auditFlags.archive != "" {
		archiver, err := export.NewSQLiteArchiver(auditFlags.archive, logger)
		if err != nil {
			return cli.NewCommandError("audit export", fmt.Errorf("failed to open archive: %w", err))
		}
		defer archiver.Close()

		inserted, err := archiver.Archive(ctx, events)
		if err != nil {
			return cli.NewCommandError("audit export", fmt.Errorf("archival failed: %w", err))
		}
		fmt.Fprintf(os.Stderr, "✓ Archived %d of %d events to %s\n", inserted, len(events), auditFlags.archive)
		return nil
	}

	var w io.Writer = os.Stdout
	if auditFlags.output != "" {
		f, err := os.Create(auditFlags.output)
		if err != nil {
			return cli.NewCommandError("audit export", fmt.Errorf("failed to create output file: %w", err))
		}
		defer f.Close()
		w = f
	}

	exporter := export.NewJSONLExporter()
	if err := exporter.Export(ctx, events, w); err != nil {
		return cli.NewCommandError("audit export", fmt.Errorf("export failed: %w", err))
	}

	if auditFlags.output != "" {
		fmt.Fprintf(os.Stderr, "✓ Exported %d events to %s\n", len(events), auditFlags.output)
	}
	return nil
}
