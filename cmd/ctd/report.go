package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/j-veylop/codetime-dashboard-tui/internal/dashboard"
	"github.com/j-veylop/codetime-dashboard-tui/internal/logger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/services"
	"github.com/j-veylop/codetime-dashboard-tui/internal/session"
	"github.com/j-veylop/codetime-dashboard-tui/internal/store"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ui/render"
)

var reportWidth int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the saved stats and exit",
	Long:  `Print the dashboard for the saved stats without tracking anything.`,
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVarP(&reportWidth, "width", "w", 80, "Output width in columns")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, closer, err := loadConfig()
	if err != nil {
		return err
	}
	defer closer.Close()

	blobs, err := services.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer blobs.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	l, err := store.NewGateway(blobs, "").Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	data := dashboard.Build(l.Snapshot(), session.Status{}, time.Now())
	fmt.Fprintln(cmd.OutOrStdout(), render.Dashboard(data, reportWidth))

	if at, ok := lastSaved(ctx, blobs); ok {
		fmt.Fprintf(cmd.OutOrStdout(), "\nLast saved %s\n", at.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// lastSaved reports when the stats were written, for stores that track it.
func lastSaved(ctx context.Context, blobs store.BlobStore) (time.Time, bool) {
	tracked, ok := blobs.(interface {
		UpdatedAt(ctx context.Context, key string) (time.Time, bool, error)
	})
	if !ok {
		return time.Time{}, false
	}
	at, found, err := tracked.UpdatedAt(ctx, store.DefaultKey)
	if err != nil {
		logger.Warn("failed to read save time", "error", err)
		return time.Time{}, false
	}
	return at, found
}
