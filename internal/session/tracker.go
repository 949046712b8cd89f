// Package session converts focus-change events into ledger accumulations.
//
// A Tracker is either idle or active on one category. Time since Session.Start
// is uncommitted; Flush moves it into the ledger and advances Start, so the
// same interval is never counted twice.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/codetime-dashboard-tui/internal/ledger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/logger"
)

// DefaultSettlePeriod is the amount of continuous focus after which a settle
// tick commits the uncommitted interval.
const DefaultSettlePeriod = 10 * time.Second

// Session is the live, not yet fully committed focus streak.
type Session struct {
	// Category is empty while idle.
	Category string
	// Start marks the beginning of the uncommitted sub-interval.
	Start time.Time
	// Seconds already committed to the ledger for the current streak.
	Seconds int64
	// StreakID identifies the current streak in logs and events.
	StreakID string
}

// Active reports whether a category is focused.
func (s Session) Active() bool {
	return s.Category != ""
}

// Status is the read-only view used by the status indicator.
type Status struct {
	Category string
	StreakID string
	Active   bool
	// Seconds is committed streak time plus the uncommitted interval.
	Seconds int64
	// Uncommitted is the part of Seconds not yet in the ledger.
	Uncommitted int64
}

// Config holds tracker configuration.
type Config struct {
	SettlePeriod time.Duration
}

// Tracker owns the ledger and the single live session.
type Tracker struct {
	ledger       *ledger.Ledger
	newID        func() string
	session      Session
	settlePeriod time.Duration
	mu           sync.Mutex
}

// NewTracker creates an idle tracker over l. A nil ledger starts empty.
func NewTracker(l *ledger.Ledger, config Config) *Tracker {
	if l == nil {
		l = ledger.New()
	}
	if config.SettlePeriod <= 0 {
		config.SettlePeriod = DefaultSettlePeriod
	}

	return &Tracker{
		ledger:       l,
		settlePeriod: config.SettlePeriod,
		newID:        uuid.NewString,
	}
}

// Ledger returns the tracked ledger.
func (t *Tracker) Ledger() *ledger.Ledger {
	return t.ledger
}

// SettlePeriod returns the configured settle period.
func (t *Tracker) SettlePeriod() time.Duration {
	return t.settlePeriod
}

// Session returns a copy of the live session.
func (t *Tracker) Session() Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

// FocusChanged closes out the current interval and opens a new one. An empty
// category means focus moved to something untrackable and the tracker goes
// idle. Focusing the category that is already active still starts a new
// streak.
func (t *Tracker) FocusChanged(category string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.flushLocked(now)
	prev := t.session

	if category == "" {
		t.session = Session{}
		if prev.Active() {
			logger.Debug("focus idle", "previous", prev.Category, "streak_seconds", prev.Seconds)
		}
		return
	}

	t.session = Session{
		Category: category,
		Start:    now,
		StreakID: t.newID(),
	}
	t.ledger.RecordFocusOpened(category, now)

	logger.Debug("focus changed",
		"category", category,
		"previous", prev.Category,
		"previous_seconds", prev.Seconds,
		"streak_id", t.session.StreakID,
	)
}

// Flush commits the uncommitted interval and returns the seconds it added.
func (t *Tracker) Flush(now time.Time) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flushLocked(now)
}

func (t *Tracker) flushLocked(now time.Time) int64 {
	if !t.session.Active() {
		return 0
	}

	if now.Before(t.session.Start) {
		// Clock stepped backwards; nothing is owed for the negative span.
		t.session.Start = now
		return 0
	}
	elapsed := elapsedSeconds(t.session.Start, now)
	if elapsed > 0 {
		t.ledger.Accumulate(t.session.Category, elapsed, now)
		t.session.Seconds += elapsed
		// Only whole seconds move Start; the remainder stays uncommitted.
		t.session.Start = t.session.Start.Add(time.Duration(elapsed) * time.Second)
	}
	return elapsed
}

// SettleTick flushes once at least one settle period of focus is uncommitted.
// It returns the seconds committed, zero when nothing was flushed.
func (t *Tracker) SettleTick(now time.Time) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.session.Active() {
		return 0
	}
	elapsed := elapsedSeconds(t.session.Start, now)
	if elapsed <= 0 || time.Duration(elapsed)*time.Second < t.settlePeriod {
		return 0
	}
	return t.flushLocked(now)
}

// DocumentOpened counts a newly surfaced document regardless of focus.
func (t *Tracker) DocumentOpened(category string, now time.Time) {
	if category == "" {
		return
	}
	t.ledger.RecordFileObserved(category, now)
}

// Shutdown commits the final partial interval.
func (t *Tracker) Shutdown(now time.Time) int64 {
	return t.Flush(now)
}

// ResetSession drops the live session without committing it.
func (t *Tracker) ResetSession() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.session = Session{}
}

// Reset clears the ledger and the live session.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ledger.Reset()
	t.session = Session{}
	logger.Info("tracker reset")
}

// Status returns the live streak including uncommitted time.
func (t *Tracker) Status(now time.Time) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked(now)
}

func (t *Tracker) statusLocked(now time.Time) Status {
	if !t.session.Active() {
		return Status{}
	}

	uncommitted := elapsedSeconds(t.session.Start, now)
	if uncommitted < 0 {
		uncommitted = 0
	}
	return Status{
		Category:    t.session.Category,
		StreakID:    t.session.StreakID,
		Active:      true,
		Seconds:     t.session.Seconds + uncommitted,
		Uncommitted: uncommitted,
	}
}

// View returns a ledger snapshot and the live status taken together.
func (t *Tracker) View(now time.Time) (ledger.Snapshot, Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Snapshot(), t.statusLocked(now)
}

// Snapshot returns a ledger snapshot consistent with the session state.
func (t *Tracker) Snapshot() ledger.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Snapshot()
}

// elapsedSeconds truncates toward zero, so negative spans stay non-positive.
func elapsedSeconds(start, now time.Time) int64 {
	return int64(now.Sub(start) / time.Second)
}
