package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"atlashq/meridian/pkg/audit/export"
	"atlashq/meridian/pkg/cli"
	"atlashq/meridian/pkg/config"
	"atlashq/meridian/pkg/policy/engine"
	"atlashq/meridian/pkg/policy/source"
	"atlashq/meridian/pkg/policy/store"
	"atlashq/meridian/pkg/server"
	"atlashq/meridian/pkg/telemetry/logging"
	"atlashq/meridian/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Meridian API server",
	Long: `Start the Meridian API server with the specified configuration.

The server listens on the configured address and serves the policy version
store, the compliance evaluation endpoint, and the audit trail.

Examples:
  # Start with default config
  meridian run

  # Start with custom config
  meridian run --config /etc/meridian/config.yaml

  # Override listen address
  meridian run --listen 0.0.0.0:8080

  # Validate config without starting server
  meridian run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	// Initialize logging based on config
	logger, err := logging.Setup(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	ctx := cli.SetupSignalHandler()

	// Open the policy version store
	st, err := openStore(cfg, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer st.Close()
	fmt.Printf("✓ Policy store initialized (%s backend)\n", cfg.Storage.Backend)

	// Seed the store on first start (no-op when versions already exist)
	if cfg.Policy.SeedPath != "" {
		rec, err := source.SeedIfEmpty(ctx, st, cfg.Policy.SeedPath)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to seed policy store: %w", err))
		}
		if rec != nil {
			fmt.Printf("✓ Policy store seeded (%s active)\n", rec.VersionID)
		}
	}

	// Watch the seed file for changes; each change lands as a new draft
	if cfg.Policy.Watch && cfg.Policy.SeedPath != "" {
		watcherConfig := &source.FileWatcherConfig{
			Path:             cfg.Policy.SeedPath,
			DebounceInterval: cfg.Policy.WatchDebounce,
		}
		watcher, err := source.NewFileWatcher(watcherConfig, logger)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to create seed watcher: %w", err))
		}
		go func() {
			err := watcher.Watch(ctx, func() error {
				_, err := source.ImportDraft(ctx, st, cfg.Policy.SeedPath)
				return err
			})
			if err != nil {
				slog.Warn("seed file watcher exited", "error", err)
			}
		}()
		defer watcher.Stop()
		fmt.Printf("✓ Seed file watcher started (%s)\n", cfg.Policy.SeedPath)
	}

	// Metrics collector (no-op when disabled)
	collector := metrics.NewCollector(cfg.Telemetry.Metrics.Enabled, nil)

	// Scheduled audit archival
	if cfg.Audit.Archive.Enabled {
		archiver, err := export.NewSQLiteArchiver(cfg.Audit.Archive.Path, logger)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open audit archive: %w", err))
		}
		defer archiver.Close()

		scheduler := export.NewScheduler(st, archiver, cfg.Audit.Archive.Schedule)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to start audit archival: %w", err))
		}
		defer scheduler.Stop()

		if next := scheduler.NextRun(); next != nil {
			slog.Debug("audit archival scheduler started", "next_run", next)
		}
		fmt.Printf("✓ Audit archival scheduled (%s)\n", cfg.Audit.Archive.Schedule)
	}

	// Create HTTP server
	evaluator := engine.NewEvaluator(logger)
	srv := server.NewServer(&cfg.Server, &cfg.Telemetry.Metrics, st, evaluator, collector)

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until a shutdown signal or server error
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// openStore creates the configured store backend.
func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		sqliteConfig := store.SQLiteConfig{
			Path:         cfg.Storage.SQLite.Path,
			BusyTimeout:  cfg.Storage.SQLite.BusyTimeout,
			MaxOpenConns: cfg.Storage.SQLite.MaxOpenConns,
		}
		return store.NewSQLiteStore(sqliteConfig, logger)
	case "memory":
		return store.NewMemoryStore(logger), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Meridian v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("storage backend", "backend", cfg.Storage.Backend)
	if cfg.Policy.SeedPath != "" {
		slog.Debug("policy seed", "path", cfg.Policy.SeedPath, "watch", cfg.Policy.Watch)
	}
	if cfg.Audit.Archive.Enabled {
		slog.Debug("audit archival enabled", "schedule", cfg.Audit.Archive.Schedule)
	}
}
