package render

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/codetime-dashboard-tui/internal/dashboard"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ledger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/session"
)

var now = time.Date(2026, 3, 12, 14, 30, 0, 0, time.UTC)

func sampleData(status session.Status) dashboard.Data {
	l := ledger.New()
	l.Accumulate("go", 3600, now)
	l.Accumulate("python", 1800, now.AddDate(0, 0, -2).Add(-8*time.Hour))
	l.Accumulate("rust", 1800, now.AddDate(0, 0, -10))
	return dashboard.Build(l.Snapshot(), status, now)
}

func TestDashboard_Empty(t *testing.T) {
	out := ansi.Strip(Dashboard(dashboard.Build(ledger.New().Snapshot(), session.Status{}, now), 80))

	for _, want := range []string{"○ idle", "No coding time recorded yet.", "Total 0s", "Top " + ledger.None} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Languages") {
		t.Error("empty dashboard should not draw charts")
	}
}

func TestDashboard_Sections(t *testing.T) {
	out := ansi.Strip(Dashboard(sampleData(session.Status{}), 100))

	for _, want := range []string{
		"Total 2h", "Top Go",
		"Languages", "Last 7 days", "Hours of day",
		"Go", "Python", "Rust", "50.0%", "25.0%",
		"Thu 1h", "Tue 30m", "Wed 0s",
		"hours per day",
		"Peak hour 14:00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestDashboard_LiveStatus(t *testing.T) {
	status := session.Status{Category: "go", Active: true, Seconds: 75, Uncommitted: 5}
	out := ansi.Strip(Dashboard(sampleData(status), 100))

	if !strings.Contains(out, "● Go 00:01:15") {
		t.Errorf("status line missing:\n%s", out)
	}
	if !strings.Contains(out, "Total 2h") {
		t.Errorf("total should include live seconds:\n%s", out)
	}
}

func TestDashboard_NarrowWidth(t *testing.T) {
	out := Dashboard(sampleData(session.Status{}), 5)
	if !strings.Contains(ansi.Strip(out), "Languages") {
		t.Error("narrow widths should still render")
	}
}

func TestRanking_Capped(t *testing.T) {
	l := ledger.New()
	for i := 0; i < MaxRanked+3; i++ {
		l.Accumulate(fmt.Sprintf("lang%02d", i), int64(100+i), now)
	}
	data := dashboard.Build(l.Snapshot(), session.Status{}, now)

	lines := strings.Split(ansi.Strip(Ranking(data.Ranking, 80)), "\n")
	if len(lines) != MaxRanked {
		t.Fatalf("ranking rows = %d, want %d", len(lines), MaxRanked)
	}
	if !strings.HasPrefix(lines[0], "Lang10") {
		t.Errorf("first row = %q, want the largest category", lines[0])
	}
}

func TestHours_NoPeak(t *testing.T) {
	data := dashboard.Build(ledger.New().Snapshot(), session.Status{}, now)
	out := ansi.Strip(Hours(data))
	if !strings.Contains(out, "Peak hour none") {
		t.Errorf("Hours = %q", out)
	}
	if !strings.Contains(out, "06 07 08") {
		t.Errorf("hour labels should start at 06: %q", out)
	}
}

func TestLegend(t *testing.T) {
	out := ansi.Strip(Legend(sampleData(session.Status{}).Ranking))
	if out != "■ Go  ■ Python  ■ Rust" {
		t.Errorf("Legend = %q", out)
	}
}
