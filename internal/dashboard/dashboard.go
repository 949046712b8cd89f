// Package dashboard derives the display model from a ledger snapshot.
package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/j-veylop/codetime-dashboard-tui/internal/format"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ledger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/models"
	"github.com/j-veylop/codetime-dashboard-tui/internal/session"
)

const (
	// DayStartHour is the first hour shown in the hourly profile.
	DayStartHour = 6
	// HourSlots is the number of hourly slots shown.
	HourSlots = 16
	// WeekDays is the length of the daily history window.
	WeekDays = 7
)

// Entry is one ranked category.
type Entry struct {
	ID        string
	Name      string
	Color     string
	Seconds   int64
	Percent   float64
	FileCount int64
}

// Day is one bucket of the weekly history.
type Day struct {
	Date    string
	Label   string
	Seconds int64
}

// Hour is one slot of the hourly profile.
type Hour struct {
	Hour    int
	Seconds int64
}

// Status is the live status indicator.
type Status struct {
	Category string
	Name     string
	Seconds  int64
	Active   bool
}

// String renders the short indicator, e.g. "● Go 00:12:31".
func (s Status) String() string {
	if !s.Active {
		return "○ idle"
	}
	return fmt.Sprintf("● %s %s", s.Name, format.Clock(s.Seconds))
}

// Data is everything the dashboard renders.
type Data struct {
	Now          time.Time
	Top          string
	Ranking      []Entry
	Hours        []Hour
	Status       Status
	TotalSeconds int64
	Week         [WeekDays]Day
	PeakHour     int
}

// Build derives the dashboard from snap and the live status at now. The
// live uncommitted seconds are included in every total.
func Build(snap ledger.Snapshot, status session.Status, now time.Time) Data {
	data := Data{Now: now}

	var live int64
	if status.Active {
		data.Status = Status{
			Category: status.Category,
			Name:     models.Lookup(status.Category).Name,
			Seconds:  status.Seconds,
			Active:   true,
		}
		live = max(status.Uncommitted, 0)
	}

	data.Ranking = ranking(snap, status.Category, live)
	for _, e := range data.Ranking {
		data.TotalSeconds += e.Seconds
	}
	if data.TotalSeconds > 0 {
		for i := range data.Ranking {
			data.Ranking[i].Percent = float64(data.Ranking[i].Seconds) / float64(data.TotalSeconds) * 100
		}
	}

	data.Top = ledger.None
	if len(data.Ranking) > 0 {
		data.Top = data.Ranking[0].Name
	}

	data.Week = week(snap, now, live)
	data.Hours, data.PeakHour = hours(snap, now, live)
	return data
}

// ranking orders categories by descending seconds, ties by id.
func ranking(snap ledger.Snapshot, liveID string, live int64) []Entry {
	entries := make([]Entry, 0, len(snap.Categories)+1)
	for id, stat := range snap.Categories {
		secs := stat.TotalTime
		if id == liveID {
			secs += live
		}
		lang := models.Lookup(id)
		entries = append(entries, Entry{
			ID:        id,
			Name:      lang.Name,
			Color:     lang.Color,
			Seconds:   secs,
			FileCount: stat.FileCount,
		})
	}
	if _, ok := snap.Categories[liveID]; !ok && liveID != "" && live > 0 {
		lang := models.Lookup(liveID)
		entries = append(entries, Entry{ID: liveID, Name: lang.Name, Color: lang.Color, Seconds: live})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Seconds != entries[j].Seconds {
			return entries[i].Seconds > entries[j].Seconds
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// week returns the last WeekDays calendar dates ending today, oldest first.
func week(snap ledger.Snapshot, now time.Time, live int64) [WeekDays]Day {
	var days [WeekDays]Day
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for i := range WeekDays {
		day := today.AddDate(0, 0, i-(WeekDays-1))
		key := ledger.DateKey(day)

		var secs int64
		for _, s := range snap.Daily[key] {
			secs += s
		}
		days[i] = Day{Date: key, Label: day.Format("Mon"), Seconds: secs}
	}
	days[WeekDays-1].Seconds += live
	return days
}

// hours reorders the 24h profile to start at DayStartHour and keeps the
// first HourSlots slots. The peak is taken over the whole day and is -1
// when nothing has been recorded.
func hours(snap ledger.Snapshot, now time.Time, live int64) ([]Hour, int) {
	profile := snap.Hourly
	profile[now.Hour()] += live

	slots := make([]Hour, 0, HourSlots)
	for i := range HourSlots {
		h := (DayStartHour + i) % ledger.HoursPerDay
		slots = append(slots, Hour{Hour: h, Seconds: profile[h]})
	}

	peak, peakSecs := -1, int64(0)
	for h, secs := range profile {
		if secs > peakSecs {
			peak, peakSecs = h, secs
		}
	}
	return slots, peak
}
