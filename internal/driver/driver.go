// Package driver runs the single timeline that feeds the session tracker.
//
// Host events, the settle ticker and the persist ticker are all handled on
// one goroutine, so every tracker mutation happens in a well-defined order.
// Snapshots are persisted by a separate saver goroutine.
package driver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/j-veylop/codetime-dashboard-tui/internal/ledger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/logger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/session"
	"github.com/j-veylop/codetime-dashboard-tui/internal/store"
)

// ErrAlreadyRunning is returned when Run is called twice.
var ErrAlreadyRunning = errors.New("driver already running")

// Event is an inbound host notification.
type Event interface {
	isEvent()
}

type (
	// FocusEvent reports that focus moved to a new document. Category is the
	// document's language id; an untrackable target sends the tracker idle.
	FocusEvent struct {
		Time      time.Time
		Category  string
		Trackable bool
	}

	// DocumentEvent reports that a document was surfaced to the user.
	DocumentEvent struct {
		Time     time.Time
		Category string
	}

	// ResetRequest clears all tracked data and saves the empty ledger.
	// The save result is sent on Done, which should be buffered.
	ResetRequest struct {
		Done chan error
	}

	// SaveRequest flushes the live session and saves synchronously.
	SaveRequest struct {
		Done chan error
	}
)

func (FocusEvent) isEvent()    {}
func (DocumentEvent) isEvent() {}
func (ResetRequest) isEvent()  {}
func (SaveRequest) isEvent()   {}

// NewResetRequest returns a reset request with a buffered reply channel.
func NewResetRequest() ResetRequest {
	return ResetRequest{Done: make(chan error, 1)}
}

// NewSaveRequest returns a save request with a buffered reply channel.
func NewSaveRequest() SaveRequest {
	return SaveRequest{Done: make(chan error, 1)}
}

// Config holds driver configuration.
type Config struct {
	SettleInterval  time.Duration
	PersistInterval time.Duration
	SaveTimeout     time.Duration
	QueueSize       int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		SettleInterval:  time.Second,
		PersistInterval: 5 * time.Minute,
		SaveTimeout:     10 * time.Second,
		QueueSize:       256,
	}
}

// Ticker is the subset of time.Ticker the driver uses.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type realTicker struct {
	*time.Ticker
}

func (t realTicker) Chan() <-chan time.Time {
	return t.C
}

func newRealTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

// Option configures a Driver.
type Option func(*Driver)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

// WithTickers replaces the ticker constructor.
func WithTickers(newTicker func(time.Duration) Ticker) Option {
	return func(d *Driver) { d.newTicker = newTicker }
}

// OnSettle registers a callback receiving the live status after every
// settle tick and focus change. It runs on the driver goroutine.
func OnSettle(fn func(session.Status)) Option {
	return func(d *Driver) { d.onSettle = fn }
}

// OnPersist registers a callback receiving the result of every background
// save. It runs on the saver goroutine.
func OnPersist(fn func(error)) Option {
	return func(d *Driver) { d.onPersist = fn }
}

type pendingSave struct {
	snap ledger.Snapshot
	gen  uint64
}

// Driver serializes host events and periodic work onto one goroutine.
type Driver struct {
	tracker   *session.Tracker
	gateway   *store.Gateway
	events    chan Event
	pending   chan pendingSave
	now       func() time.Time
	newTicker func(time.Duration) Ticker
	onSettle  func(session.Status)
	onPersist func(error)
	config    Config

	// saveMu orders background saves against reset and final saves. The
	// timeline never takes it for a scheduled persist.
	saveMu  sync.Mutex
	gen     atomic.Uint64
	running bool
	runMu   sync.Mutex
}

// New creates a driver for tracker that persists through gateway.
func New(tracker *session.Tracker, gateway *store.Gateway, config Config, opts ...Option) *Driver {
	def := DefaultConfig()
	if config.SettleInterval <= 0 {
		config.SettleInterval = def.SettleInterval
	}
	if config.PersistInterval <= 0 {
		config.PersistInterval = def.PersistInterval
	}
	if config.SaveTimeout <= 0 {
		config.SaveTimeout = def.SaveTimeout
	}
	if config.QueueSize <= 0 {
		config.QueueSize = def.QueueSize
	}

	d := &Driver{
		tracker:   tracker,
		gateway:   gateway,
		events:    make(chan Event, config.QueueSize),
		pending:   make(chan pendingSave, 1),
		now:       time.Now,
		newTicker: newRealTicker,
		config:    config,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Tracker returns the driven tracker.
func (d *Driver) Tracker() *session.Tracker {
	return d.tracker
}

// Post queues ev without blocking. It reports false when the queue is full
// and the event was dropped.
func (d *Driver) Post(ev Event) bool {
	select {
	case d.events <- ev:
		return true
	default:
		logger.Warn("driver queue full, dropping event", "event", describe(ev))
		return false
	}
}

// Run processes events and ticks until ctx is cancelled. On shutdown it stops
// both tickers, drains queued events, commits the live session and returns
// the result of the final save.
func (d *Driver) Run(ctx context.Context) error {
	d.runMu.Lock()
	if d.running {
		d.runMu.Unlock()
		return ErrAlreadyRunning
	}
	d.running = true
	d.runMu.Unlock()

	settle := d.newTicker(d.config.SettleInterval)
	persist := d.newTicker(d.config.PersistInterval)

	saverDone := make(chan struct{})
	go d.saveLoop(saverDone)

	logger.Info("driver started",
		"settle_interval", d.config.SettleInterval,
		"persist_interval", d.config.PersistInterval,
	)

	for {
		select {
		case ev := <-d.events:
			d.handle(ev)

		case <-settle.Chan():
			d.settle()

		case <-persist.Chan():
			d.schedulePersist()

		case <-ctx.Done():
			settle.Stop()
			persist.Stop()
			return d.shutdown(saverDone)
		}
	}
}

func (d *Driver) handle(ev Event) {
	switch e := ev.(type) {
	case FocusEvent:
		category := e.Category
		if !e.Trackable {
			category = ""
		}
		d.tracker.FocusChanged(category, d.eventTime(e.Time))
		d.reportStatus()

	case DocumentEvent:
		d.tracker.DocumentOpened(e.Category, d.eventTime(e.Time))

	case ResetRequest:
		d.tracker.Reset()
		reply(e.Done, d.saveNow(true))

	case SaveRequest:
		d.tracker.Flush(d.now())
		reply(e.Done, d.saveNow(false))
	}
}

func (d *Driver) settle() {
	d.tracker.SettleTick(d.now())
	d.reportStatus()
}

func (d *Driver) reportStatus() {
	if d.onSettle != nil {
		d.onSettle(d.tracker.Status(d.now()))
	}
}

// schedulePersist hands a snapshot to the saver, replacing any snapshot the
// saver has not picked up yet.
func (d *Driver) schedulePersist() {
	p := pendingSave{snap: d.tracker.Snapshot(), gen: d.gen.Load()}
	select {
	case <-d.pending:
	default:
	}
	d.pending <- p
}

func (d *Driver) saveLoop(done chan<- struct{}) {
	defer close(done)

	for p := range d.pending {
		saved, err := d.saveBackground(p)
		if !saved {
			continue
		}
		if err != nil {
			logger.Warn("background save failed", "error", err)
		}
		if d.onPersist != nil {
			d.onPersist(err)
		}
	}
}

func (d *Driver) saveBackground(p pendingSave) (bool, error) {
	d.saveMu.Lock()
	defer d.saveMu.Unlock()

	// A reset since the snapshot was taken makes it stale.
	if p.gen != d.gen.Load() {
		return false, nil
	}
	return true, d.save(p.snap)
}

// saveNow saves the current snapshot synchronously. A reset discards any
// snapshot still waiting for the saver.
func (d *Driver) saveNow(reset bool) error {
	d.saveMu.Lock()
	defer d.saveMu.Unlock()

	if reset {
		d.gen.Add(1)
		select {
		case <-d.pending:
		default:
		}
	}
	return d.save(d.tracker.Snapshot())
}

func (d *Driver) save(snap ledger.Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.SaveTimeout)
	defer cancel()
	return d.gateway.Save(ctx, snap)
}

func (d *Driver) shutdown(saverDone <-chan struct{}) error {
drain:
	for {
		select {
		case ev := <-d.events:
			d.handle(ev)
		default:
			break drain
		}
	}

	close(d.pending)
	<-saverDone

	committed := d.tracker.Shutdown(d.now())
	err := d.saveNow(false)
	if err != nil {
		logger.Error("final save failed", "error", err)
	} else {
		logger.Info("driver stopped", "final_flush_seconds", committed)
	}
	return err
}

func (d *Driver) eventTime(t time.Time) time.Time {
	if t.IsZero() {
		return d.now()
	}
	return t
}

func reply(ch chan error, err error) {
	if ch == nil {
		return
	}
	select {
	case ch <- err:
	default:
		logger.Warn("request reply dropped, channel not ready")
	}
}

func describe(ev Event) string {
	switch ev.(type) {
	case FocusEvent:
		return "focus"
	case DocumentEvent:
		return "document"
	case ResetRequest:
		return "reset"
	case SaveRequest:
		return "save"
	default:
		return "unknown"
	}
}
