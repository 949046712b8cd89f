package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/codetime-dashboard-tui/internal/app"
	"github.com/j-veylop/codetime-dashboard-tui/internal/config"
	"github.com/j-veylop/codetime-dashboard-tui/internal/format"
	"github.com/j-veylop/codetime-dashboard-tui/internal/logger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/models"
	"github.com/j-veylop/codetime-dashboard-tui/internal/services"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ui/tabs/info"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ui/tabs/languages"
)

var (
	watchDir   string
	eventsPath string
	headless   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Track focus and show the dashboard",
	Long: `Track focus and show the live dashboard. This is the default command.

With --headless no dashboard is drawn; the tracker logs its status after
every save and exits on SIGINT or SIGTERM.`,
	Example: `  ctd run --dir ~/src/project
  my-editor-plugin | ctd run --events - --headless`,
	Args: cobra.NoArgs,
	RunE: runTracker,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

// addRunFlags registers the tracker flags. The root command shares them so
// that a bare "ctd --dir ." works.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&watchDir, "dir", "", "Project directory to watch for edits (overrides WATCH_DIR)")
	cmd.Flags().StringVar(&eventsPath, "events", "", `Read JSON lines focus events from a file, or "-" for stdin`)
	cmd.Flags().BoolVar(&headless, "headless", false, "Track without drawing the dashboard")
}

func runTracker(cmd *cobra.Command, _ []string) error {
	if eventsPath == "-" && !headless {
		return errors.New("reading events from stdin requires --headless")
	}

	cfg, closer, err := loadConfig()
	if err != nil {
		return err
	}
	defer closer.Close()

	if watchDir != "" {
		cfg.WatchDir = watchDir
	}

	var opts []services.Option
	switch eventsPath {
	case "":
	case "-":
		opts = append(opts, services.WithEventStream(os.Stdin))
	default:
		f, err := os.Open(eventsPath)
		if err != nil {
			return fmt.Errorf("failed to open event stream: %w", err)
		}
		defer f.Close()
		opts = append(opts, services.WithEventStream(f))
	}

	svcManager, err := services.NewManager(cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	if headless {
		err = runHeadless(cmd.Context(), svcManager)
	} else {
		err = runTUI(cfg, svcManager)
	}

	// Close performs the final save.
	if closeErr := svcManager.Close(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
	}
	return err
}

func runTUI(cfg *config.Config, svcManager *services.Manager) error {
	model := app.NewModel(svcManager)

	state := model.GetState()
	model.SetTabs([]app.Tab{
		dashboard.New(state), // Tab 0: Dashboard - totals and charts
		languages.New(state), // Tab 1: Languages - per-language table
		info.New(state, cfg), // Tab 2: Info - configuration and app info
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		if _, ok := <-sigChan; ok {
			p.Send(tea.Quit())
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// runHeadless logs status after every save until a signal arrives or the
// manager stops.
func runHeadless(parent context.Context, svcManager *services.Manager) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events, _ := svcManager.Subscribe()
	defer svcManager.Unsubscribe(events)

	logger.Info("tracking headless", "store", svcManager.Config().StoreLocation())

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			logEvent(svcManager, event)
		}
	}
}

func logEvent(svcManager *services.Manager, event services.ServiceEvent) {
	switch e := event.(type) {
	case services.PersistedEvent:
		data := svcManager.Dashboard()
		status := svcManager.Status()
		logger.Info("stats saved",
			"at", e.At.Format("15:04:05"),
			"total", format.Duration(data.TotalSeconds),
			"top", data.Top,
			"active", status.Active,
			"language", models.Lookup(status.Category).Name,
			"streak", format.Clock(status.Seconds),
		)
	case services.ErrorEvent:
		logger.Warn("service error", "service", e.Service, "error", e.Error)
	}
}
