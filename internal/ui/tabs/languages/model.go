// Package languages provides the per-language breakdown tab.
package languages

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/codetime-dashboard-tui/internal/app"
	"github.com/j-veylop/codetime-dashboard-tui/internal/format"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ui/styles"
)

// keyMap defines the key bindings specific to the languages tab.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// defaultKeyMap returns the default key bindings for the languages tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last"),
		),
	}
}

// Model represents the languages tab state.
type Model struct {
	state   *app.State
	table   table.Model
	spinner components.LoadingSpinner
	keys    keyMap
	width   int
	height  int
}

// New creates a new languages model.
func New(state *app.State) *Model {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Language", Width: 18},
		{Title: "Time", Width: 10},
		{Title: "Hours", Width: 7},
		{Title: "Share", Width: 7},
		{Title: "Files", Width: 6},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:   state,
		table:   t,
		spinner: components.NewSpinner("Loading languages..."),
		keys:    defaultKeyMap(),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Top):
			m.table.GotoTop()
		case key.Matches(msg, m.keys.Bottom):
			m.table.GotoBottom()
		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case spinner.TickMsg:
		if !m.state.IsInitialLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case app.DashboardLoadedMsg:
		m.updateTableData()
	}

	return m, nil
}

// updateTableData rebuilds the rows from the current ranking. The cursor
// is clamped when the ranking shrinks, e.g. after a reset.
func (m *Model) updateTableData() {
	ranking := m.state.GetDashboard().Ranking
	rows := make([]table.Row, 0, len(ranking))

	for i, e := range ranking {
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			e.Name,
			format.Duration(e.Seconds),
			format.Hours(e.Seconds),
			fmt.Sprintf("%.1f%%", e.Percent),
			strconv.FormatInt(e.FileCount, 10),
		})
	}

	m.table.SetRows(rows)
	if len(rows) > 0 && m.table.Cursor() >= len(rows) {
		m.table.SetCursor(len(rows) - 1)
	}
}

// SelectedLanguage returns the name in the selected row, or "".
func (m *Model) SelectedLanguage() string {
	if row := m.table.SelectedRow(); len(row) > 1 {
		return row[1]
	}
	return ""
}

// SetSize sets the available size for the languages tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	// Title, card borders, legend and footer.
	m.table.SetHeight(max(height-14, 3))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Down,
		m.keys.Up,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Down, m.keys.Up},
		{m.keys.Top, m.keys.Bottom},
	}
}
