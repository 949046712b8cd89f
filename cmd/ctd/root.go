package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/j-veylop/codetime-dashboard-tui/internal/config"
	"github.com/j-veylop/codetime-dashboard-tui/internal/logger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/version"
)

var (
	dbPath       string
	storeBackend string
	logLevel     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ctd",
	Short: "Code Time Dashboard - time spent per programming language",
	Long: `Code Time Dashboard tracks how long each programming language holds your
focus and shows the totals in a terminal dashboard.

Focus events come from watching a project directory (--dir) or from a JSON
lines stream (--events). Stats are saved periodically and on exit.`,
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to the tracker when no subcommand is provided
		return runTracker(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides DATABASE_PATH)")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Store backend: sqlite, redis or memory (overrides STORE_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides LOG_LEVEL)")

	addRunFlags(rootCmd)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration, applies the global flags and opens
// the log. The returned closer releases the log file.
func loadConfig() (*config.Config, io.Closer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if storeBackend != "" {
		cfg.StoreBackend = storeBackend
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	closer, err := logger.Init(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, closer, nil
}
