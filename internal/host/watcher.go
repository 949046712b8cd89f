package host

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/codetime-dashboard-tui/internal/driver"
	"github.com/j-veylop/codetime-dashboard-tui/internal/logger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/models"
)

// DefaultIdleTimeout is how long the watcher waits without file activity
// before reporting focus as untrackable.
const DefaultIdleTimeout = 5 * time.Minute

var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// WatcherConfig holds watcher configuration.
type WatcherConfig struct {
	Root        string
	IdleTimeout time.Duration
}

// Watcher infers focus from file writes under a project directory. Writing
// a file other than the last active one moves focus to it; a quiet period
// of IdleTimeout sends the tracker idle.
type Watcher struct {
	fs       *fsnotify.Watcher
	sink     Sink
	seen     map[string]struct{}
	root     string
	lastPath string
	idle     time.Duration
}

// NewWatcher watches root and every non-skipped directory below it.
func NewWatcher(config WatcherConfig, sink Sink) (*Watcher, error) {
	if config.Root == "" {
		return nil, errors.New("watch root is required")
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultIdleTimeout
	}

	root, err := filepath.Abs(config.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	w := &Watcher{
		fs:   fsw,
		sink: sink,
		seen: make(map[string]struct{}),
		root: root,
		idle: config.IdleTimeout,
	}
	if err := w.addTree(root); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Root returns the absolute watch root.
func (w *Watcher) Root() string {
	return w.root
}

// addTree adds dir and its non-skipped subdirectories.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			logger.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Run forwards file activity to the sink until ctx is cancelled, then closes
// the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.fs.Close(); err != nil {
			logger.Error("failed to close watcher", "error", err)
		}
	}()

	idle := time.NewTimer(w.idle)
	idle.Stop()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.handle(event) {
				idle.Reset(w.idle)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "error", err)

		case <-idle.C:
			if w.lastPath != "" {
				logger.Debug("no file activity, going idle", "last_path", w.lastPath)
				w.lastPath = ""
				w.sink.Post(driver.FocusEvent{Time: time.Now()})
			}

		case <-ctx.Done():
			idle.Stop()
			return nil
		}
	}
}

// handle reports whether event counted as activity.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !skipDir(filepath.Base(event.Name)) {
				if err := w.addTree(event.Name); err != nil {
					logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			return false
		}
	}

	if skipFile(filepath.Base(event.Name)) {
		return false
	}
	category, ok := models.FromPath(event.Name)
	if !ok {
		return false
	}

	now := time.Now()
	if _, seen := w.seen[event.Name]; !seen {
		w.seen[event.Name] = struct{}{}
		w.sink.Post(driver.DocumentEvent{Time: now, Category: category})
	}
	if event.Name != w.lastPath {
		w.lastPath = event.Name
		w.sink.Post(driver.FocusEvent{Time: now, Category: category, Trackable: true})
	}
	return true
}

func skipDir(name string) bool {
	return skippedDirs[name] || strings.HasPrefix(name, ".")
}

// skipFile ignores dotfiles and editor swap or backup files.
func skipFile(name string) bool {
	switch {
	case strings.HasPrefix(name, "."),
		strings.HasSuffix(name, "~"),
		strings.HasSuffix(name, ".swp"),
		strings.HasSuffix(name, ".swx"),
		strings.HasSuffix(name, ".tmp"),
		name == "4913":
		return true
	}
	return false
}
