// Package ledger holds accumulated time-in-category statistics.
//
// A Ledger aggregates the same seconds along three dimensions: a per-category
// total, a per-day-per-category bucket and a dateless hour-of-day profile.
// Accumulate is the only path that adds time, so the three views always sum
// to the same total.
package ledger

import (
	"sort"
	"sync"
	"time"
)

const (
	// SchemaVersion is the version tag written alongside persisted ledgers.
	SchemaVersion = 1

	// HoursPerDay is the size of the hour-of-day profile.
	HoursPerDay = 24

	// DateLayout is the key format of daily buckets.
	DateLayout = "2006-01-02"

	// None is returned by TopCategory for an empty ledger.
	None = "none"
)

// CategoryStat is the running total for one category.
type CategoryStat struct {
	TotalTime  int64
	LastActive time.Time
	FileCount  int64
}

// Snapshot is a deep copy of a ledger. It shares no memory with the ledger
// it was taken from.
type Snapshot struct {
	Version    int
	Categories map[string]CategoryStat
	Daily      map[string]map[string]int64
	Hourly     [HoursPerDay]int64
}

// Ledger is safe for concurrent use.
type Ledger struct {
	mu         sync.RWMutex
	categories map[string]*CategoryStat
	daily      map[string]map[string]int64
	hourly     [HoursPerDay]int64
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		categories: make(map[string]*CategoryStat),
		daily:      make(map[string]map[string]int64),
	}
}

// FromSnapshot builds a fresh ledger from a snapshot. Nil maps are treated as
// empty and negative values are clamped to zero.
func FromSnapshot(s Snapshot) *Ledger {
	l := New()
	for id, stat := range s.Categories {
		st := stat
		if st.TotalTime < 0 {
			st.TotalTime = 0
		}
		if st.FileCount < 0 {
			st.FileCount = 0
		}
		l.categories[id] = &st
	}
	for date, bucket := range s.Daily {
		if bucket == nil {
			continue
		}
		day := make(map[string]int64, len(bucket))
		for id, secs := range bucket {
			if secs > 0 {
				day[id] = secs
			}
		}
		l.daily[date] = day
	}
	for i, secs := range s.Hourly {
		if secs > 0 {
			l.hourly[i] = secs
		}
	}
	return l
}

// DateKey returns the daily bucket key for t, using t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// EnsureCategory creates a zeroed stat for id if none exists.
func (l *Ledger) EnsureCategory(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLocked(id)
}

func (l *Ledger) ensureLocked(id string) *CategoryStat {
	stat, ok := l.categories[id]
	if !ok {
		stat = &CategoryStat{}
		l.categories[id] = stat
	}
	return stat
}

// RecordFocusOpened marks id as having become focused at now.
func (l *Ledger) RecordFocusOpened(id string, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLocked(id).LastActive = now
}

// RecordFileObserved counts one newly observed document for id.
func (l *Ledger) RecordFileObserved(id string, _ time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLocked(id).FileCount++
}

// Accumulate adds seconds to the category total, the daily bucket of now and
// the hour-of-day slot of now. Non-positive amounts are ignored.
func (l *Ledger) Accumulate(id string, seconds int64, now time.Time) {
	if seconds <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.ensureLocked(id).TotalTime += seconds

	key := DateKey(now)
	day, ok := l.daily[key]
	if !ok {
		day = make(map[string]int64)
		l.daily[key] = day
	}
	day[id] += seconds

	l.hourly[now.Hour()] += seconds
}

// TopCategory returns the category with the largest total. Ties go to the
// lexically smallest id. Returns None when the ledger is empty.
func (l *Ledger) TopCategory() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	top := None
	var best int64 = -1
	for _, id := range l.sortedIDsLocked() {
		if total := l.categories[id].TotalTime; total > best {
			top = id
			best = total
		}
	}
	return top
}

// Category returns the stat for id and whether it exists.
func (l *Ledger) Category(id string) (CategoryStat, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stat, ok := l.categories[id]
	if !ok {
		return CategoryStat{}, false
	}
	return *stat, true
}

// Categories returns all category ids in sorted order.
func (l *Ledger) Categories() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sortedIDsLocked()
}

func (l *Ledger) sortedIDsLocked() []string {
	ids := make([]string, 0, len(l.categories))
	for id := range l.categories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TotalSeconds returns the sum of all category totals.
func (l *Ledger) TotalSeconds() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total int64
	for _, stat := range l.categories {
		total += stat.TotalTime
	}
	return total
}

// DaySeconds returns the seconds recorded on date, across all categories.
func (l *Ledger) DaySeconds(date string) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total int64
	for _, secs := range l.daily[date] {
		total += secs
	}
	return total
}

// Hourly returns a copy of the hour-of-day profile.
func (l *Ledger) Hourly() [HoursPerDay]int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hourly
}

// Snapshot returns a deep copy of the ledger.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Snapshot{
		Version:    SchemaVersion,
		Categories: make(map[string]CategoryStat, len(l.categories)),
		Daily:      make(map[string]map[string]int64, len(l.daily)),
		Hourly:     l.hourly,
	}
	for id, stat := range l.categories {
		s.Categories[id] = *stat
	}
	for date, bucket := range l.daily {
		day := make(map[string]int64, len(bucket))
		for id, secs := range bucket {
			day[id] = secs
		}
		s.Daily[date] = day
	}
	return s
}

// Reset clears every category, daily bucket and hourly slot.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.categories = make(map[string]*CategoryStat)
	l.daily = make(map[string]map[string]int64)
	l.hourly = [HoursPerDay]int64{}
}

// IsEmpty reports whether the ledger holds no categories and no time.
func (l *Ledger) IsEmpty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.categories) > 0 || len(l.daily) > 0 {
		return false
	}
	for _, secs := range l.hourly {
		if secs != 0 {
			return false
		}
	}
	return true
}
