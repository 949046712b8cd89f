package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/codetime-dashboard-tui/internal/app"
	dash "github.com/j-veylop/codetime-dashboard-tui/internal/dashboard"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ledger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/session"
)

var now = time.Date(2026, 3, 12, 14, 30, 0, 0, time.UTC)

func loadedState() *app.State {
	l := ledger.New()
	l.Accumulate("go", 5400, now)
	l.Accumulate("python", 1800, now.Add(-3*time.Hour))

	state := app.NewState()
	state.SetDashboard(dash.Build(l.Snapshot(), session.Status{}, now))
	return state
}

func TestNew(t *testing.T) {
	m := New(app.NewState())
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() == nil {
		t.Error("Init should start the spinner")
	}
}

func TestModel_ViewLoading(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(80, 20)

	if !strings.Contains(ansi.Strip(m.View()), "Loading stats...") {
		t.Error("View should show the spinner until the first load")
	}
}

func TestModel_View(t *testing.T) {
	m := New(loadedState())
	m.SetSize(100, 60)

	view := ansi.Strip(m.View())
	for _, want := range []string{"Code Time", "Total 2h", "Top Go", "Go", "Python", "75.0%", "Last 7 days"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestModel_ViewEmpty(t *testing.T) {
	state := app.NewState()
	state.SetDashboard(dash.Build(ledger.New().Snapshot(), session.Status{}, now))

	m := New(state)
	m.SetSize(80, 20)
	if !strings.Contains(ansi.Strip(m.View()), "No coding time recorded yet.") {
		t.Error("empty stats should say so")
	}
}

func TestModel_TitleSparkline(t *testing.T) {
	m := New(loadedState())
	m.SetSize(100, 60)

	// Only today has time, so the last cell is the tallest block.
	if !strings.Contains(ansi.Strip(m.renderTitle()), "▁▁▁▁▁▁█") {
		t.Errorf("title = %q", ansi.Strip(m.renderTitle()))
	}
}

func TestModel_ContentWidth(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(20, 10)
	if m.contentWidth() < 40 {
		t.Errorf("contentWidth = %d, should not go below the minimum", m.contentWidth())
	}
	m.SetSize(120, 10)
	if m.contentWidth() != 114 {
		t.Errorf("contentWidth = %d, want 114", m.contentWidth())
	}
}

func TestModel_Scroll(t *testing.T) {
	m := New(loadedState())
	m.SetSize(100, 5)
	m.View()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	if m.viewport.YOffset == 0 {
		t.Error("G should scroll to the bottom")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	if m.viewport.YOffset != 0 {
		t.Error("g should scroll to the top")
	}
}

func TestModel_SpinnerStopsAfterLoad(t *testing.T) {
	m := New(loadedState())
	if _, cmd := m.Update(spinner.TickMsg{}); cmd != nil {
		t.Error("spinner should stop once stats are loaded")
	}

	loading := New(app.NewState())
	if _, cmd := loading.Update(spinner.TickMsg{}); cmd == nil {
		t.Error("spinner should keep ticking while loading")
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState())
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) != 2 {
		t.Errorf("FullHelp groups = %d, want 2", len(m.FullHelp()))
	}
}
