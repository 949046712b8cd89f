// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/codetime-dashboard-tui/internal/config"
	"github.com/j-veylop/codetime-dashboard-tui/internal/dashboard"
	"github.com/j-veylop/codetime-dashboard-tui/internal/driver"
	"github.com/j-veylop/codetime-dashboard-tui/internal/format"
	"github.com/j-veylop/codetime-dashboard-tui/internal/host"
	"github.com/j-veylop/codetime-dashboard-tui/internal/logger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/models"
	"github.com/j-veylop/codetime-dashboard-tui/internal/session"
	"github.com/j-veylop/codetime-dashboard-tui/internal/store"
)

// failureNotifyThreshold is the number of consecutive failed saves after
// which a desktop notification is sent.
const failureNotifyThreshold = 3

type (
	// StatusEvent is emitted on every settle tick and focus change.
	StatusEvent struct {
		Status session.Status
	}

	// PersistedEvent is emitted after a successful background save.
	PersistedEvent struct {
		At time.Time
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}

	// ResetEvent is emitted after a reset request completes.
	ResetEvent struct {
		Error error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (StatusEvent) isServiceEvent()    {}
func (PersistedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()     {}
func (ResetEvent) isServiceEvent()     {}

// Option configures a Manager.
type Option func(*Manager)

// WithBlobStore uses blobs instead of opening the configured backend.
func WithBlobStore(blobs store.BlobStore) Option {
	return func(m *Manager) { m.blobs = blobs }
}

// WithEventStream reads editor events from r.
func WithEventStream(r io.Reader) Option {
	return func(m *Manager) { m.stream = r }
}

// WithNotifier replaces desktop notifications.
func WithNotifier(notify func(title, message string) error) Option {
	return func(m *Manager) { m.notify = notify }
}

// WithClock replaces time.Now for the tracker timeline.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithDriverOptions passes extra options to the driver.
func WithDriverOptions(opts ...driver.Option) Option {
	return func(m *Manager) { m.driverOpts = append(m.driverOpts, opts...) }
}

// Manager owns the tracker, its driver and the host sources feeding it.
type Manager struct {
	mu          sync.RWMutex
	config      *config.Config
	blobs       store.BlobStore
	gateway     *store.Gateway
	tracker     *session.Tracker
	driver      *driver.Driver
	stream      io.Reader
	watcher     *host.Watcher
	now         func() time.Time
	notify      func(title, message string) error
	driverOpts  []driver.Option
	eventChan   chan ServiceEvent
	subscribers []chan<- ServiceEvent
	cancel      context.CancelFunc
	driverDone  chan error
	hosts       sync.WaitGroup
	closeOnce   sync.Once
	closeErr    error

	// guarded by notifyMu
	notifyMu        sync.Mutex
	failures        int
	failureNotified bool
	streakID        string
	reminders       int64
	lastSaved       time.Time
}

// NewManager opens the store, loads the stored ledger and starts tracking.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	m := &Manager{
		config:     cfg,
		now:        time.Now,
		notify:     beeepNotify,
		eventChan:  make(chan ServiceEvent, 100),
		driverDone: make(chan error, 1),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.blobs == nil {
		blobs, err := OpenStore(cfg)
		if err != nil {
			return nil, err
		}
		m.blobs = blobs
	}
	m.gateway = store.NewGateway(m.blobs, "")

	// An unreachable blob is not an empty one; tracking on would overwrite
	// the stored history with the first save.
	l, err := m.gateway.Load(context.Background())
	if err != nil {
		_ = m.blobs.Close()
		return nil, fmt.Errorf("failed to load stats from %s: %w", cfg.StoreLocation(), err)
	}
	m.tracker = session.NewTracker(l, session.Config{SettlePeriod: cfg.SettlePeriod})

	if cfg.WatchDir != "" {
		m.watcher, err = host.NewWatcher(host.WatcherConfig{
			Root:        cfg.WatchDir,
			IdleTimeout: cfg.IdleTimeout,
		}, m)
		if err != nil {
			_ = m.blobs.Close()
			return nil, err
		}
	}

	driverOpts := append([]driver.Option{
		driver.WithClock(m.now),
		driver.OnSettle(m.handleStatus),
		driver.OnPersist(m.handlePersist),
	}, m.driverOpts...)
	m.driver = driver.New(m.tracker, m.gateway, driver.Config{
		SettleInterval:  cfg.SettleInterval,
		PersistInterval: cfg.PersistInterval,
	}, driverOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go func() { m.driverDone <- m.driver.Run(ctx) }()

	if m.watcher != nil {
		m.hosts.Add(1)
		go func() {
			defer m.hosts.Done()
			if err := m.watcher.Run(ctx); err != nil {
				m.broadcast(ErrorEvent{Service: "watcher", Error: err})
			}
		}()
		logger.Info("watching project", "root", m.watcher.Root())
	}

	// The stream may block on a read that never returns, so Close does not
	// wait for it.
	if m.stream != nil {
		go func() {
			if err := host.NewStream(m.stream, m).Run(ctx); err != nil {
				m.broadcast(ErrorEvent{Service: "events", Error: err})
			}
		}()
	}

	logger.Info("tracker started",
		"store", cfg.StoreLocation(),
		"categories", len(l.Categories()),
	)
	return m, nil
}

// Post forwards a host event to the driver.
func (m *Manager) Post(ev driver.Event) bool {
	return m.driver.Post(ev)
}

// Config returns the manager configuration.
func (m *Manager) Config() *config.Config {
	return m.config
}

// Status returns the live session status.
func (m *Manager) Status() session.Status {
	return m.tracker.Status(m.now())
}

// Dashboard builds the dashboard model for the current instant.
func (m *Manager) Dashboard() dashboard.Data {
	now := m.now()
	snap, status := m.tracker.View(now)
	return dashboard.Build(snap, status, now)
}

// LastSaved returns the time of the last successful background save.
func (m *Manager) LastSaved() time.Time {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	return m.lastSaved
}

// Save flushes the live session and saves synchronously.
func (m *Manager) Save(ctx context.Context) error {
	req := driver.NewSaveRequest()
	return m.request(ctx, req, req.Done)
}

// Reset clears every tracked statistic and saves the empty ledger.
func (m *Manager) Reset(ctx context.Context) error {
	req := driver.NewResetRequest()
	err := m.request(ctx, req, req.Done)
	m.notifyMu.Lock()
	m.streakID, m.reminders = "", 0
	m.notifyMu.Unlock()
	m.broadcast(ResetEvent{Error: err})
	return err
}

func (m *Manager) request(ctx context.Context, ev driver.Event, done <-chan error) error {
	if !m.driver.Post(ev) {
		return errors.New("tracker busy, try again")
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleStatus runs on the driver goroutine.
func (m *Manager) handleStatus(status session.Status) {
	m.broadcast(StatusEvent{Status: status})
	m.checkStreakReminder(status)
}

// handlePersist runs on the saver goroutine.
func (m *Manager) handlePersist(err error) {
	m.notifyMu.Lock()
	if err == nil {
		m.failures = 0
		m.failureNotified = false
		m.lastSaved = m.now()
		at := m.lastSaved
		m.notifyMu.Unlock()
		m.broadcast(PersistedEvent{At: at})
		return
	}

	m.failures++
	notify := m.failures >= failureNotifyThreshold && !m.failureNotified
	if notify {
		m.failureNotified = true
	}
	failures := m.failures
	m.notifyMu.Unlock()

	m.broadcast(ErrorEvent{Service: "store", Error: err})
	if notify {
		m.sendNotification("Code time not saved",
			fmt.Sprintf("%d saves in a row failed: %v", failures, err))
	}
}

// checkStreakReminder notifies once each time a streak crosses a multiple of
// the reminder interval.
func (m *Manager) checkStreakReminder(status session.Status) {
	every := int64(m.config.StreakReminder / time.Second)
	if every <= 0 || !status.Active {
		return
	}

	m.notifyMu.Lock()
	if status.StreakID != m.streakID {
		m.streakID = status.StreakID
		m.reminders = 0
	}
	crossed := status.Seconds / every
	notify := crossed > m.reminders
	if notify {
		m.reminders = crossed
	}
	m.notifyMu.Unlock()

	if notify {
		name := models.Lookup(status.Category).Name
		m.sendNotification("Time for a break",
			fmt.Sprintf("You have been coding %s for %s", name, format.Duration(status.Seconds)))
	}
}

func (m *Manager) sendNotification(title, message string) {
	if m.notify == nil {
		return
	}
	if err := m.notify(title, message); err != nil {
		logger.Debug("desktop notification failed", "error", err)
	}
}

func beeepNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Close stops tracking, waits for the final save and closes the store.
// It is safe to call more than once.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.cancel()

		var errs []error
		if err := <-m.driverDone; err != nil {
			errs = append(errs, fmt.Errorf("final save: %w", err))
		}
		m.hosts.Wait()

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if err := m.blobs.Close(); err != nil {
			errs = append(errs, err)
		}
		m.closeErr = errors.Join(errs...)
	})
	return m.closeErr
}
