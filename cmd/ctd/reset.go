package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/j-veylop/codetime-dashboard-tui/internal/ledger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/logger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/services"
	"github.com/j-veylop/codetime-dashboard-tui/internal/store"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all saved stats",
	Long: `Overwrite the saved stats with an empty record. This cannot be undone.

Stop any running "ctd run" first. A running tracker keeps its stats in
memory and writes them back over the empty record on its next save. While
the dashboard is open, press R in it instead.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	cfg, closer, err := loadConfig()
	if err != nil {
		return err
	}
	defer closer.Close()

	if !resetYes {
		fmt.Fprintf(cmd.OutOrStdout(), "Clear all stats in %s? [y/N] ", cfg.StoreLocation())
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	blobs, err := services.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer blobs.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.NewGateway(blobs, "").Save(ctx, ledger.New().Snapshot()); err != nil {
		return fmt.Errorf("failed to reset stats: %w", err)
	}

	// Reclaim the space the old stats used.
	if v, ok := blobs.(interface{ Vacuum() error }); ok {
		if err := v.Vacuum(); err != nil {
			logger.Warn("vacuum failed", "error", err)
		}
	}

	logger.Info("stats reset", "store", cfg.StoreLocation())
	fmt.Fprintln(cmd.OutOrStdout(), "All stats cleared.")
	return nil
}
