package languages

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/codetime-dashboard-tui/internal/format"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ui/render"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ui/styles"
)

// View renders the languages tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	sections := []string{m.renderTitle()}

	if len(m.state.GetDashboard().Ranking) == 0 {
		sections = append(sections, m.renderEmptyState())
	} else {
		sections = append(sections, m.renderTable(), m.renderSelected(), m.renderLegend())
	}

	sections = append(sections, m.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

// renderTitle renders the languages tab title.
func (m *Model) renderTitle() string {
	data := m.state.GetDashboard()

	title := styles.TitleStyle.Render("Languages")
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d languages, %s in total",
		len(data.Ranking), format.Duration(data.TotalSeconds)))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderTable renders the ranking table.
func (m *Model) renderTable() string {
	m.updateTableData()

	cardWidth := max(m.width-6, 60)
	return styles.CardStyle.Width(cardWidth).Render(m.table.View())
}

// renderEmptyState renders the empty state when nothing was tracked.
func (m *Model) renderEmptyState() string {
	cardWidth := max(m.width-6, 40)

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render("No Languages Tracked"),
		"",
		styles.HelpStyle.Render("Focus a source file to start tracking time."),
		"",
	)

	return styles.CardStyle.Width(cardWidth).Render(content)
}

// renderSelected renders a summary line for the highlighted language.
func (m *Model) renderSelected() string {
	ranking := m.state.GetDashboard().Ranking
	i := m.table.Cursor()
	if i < 0 || i >= len(ranking) {
		return ""
	}
	e := ranking[i]

	sep := styles.HelpSeparatorStyle.Render(" · ")
	return lipgloss.NewStyle().MarginTop(1).Render(
		styles.LanguageStyle(e.Color).Bold(true).Render("▸ "+e.Name) + "  " +
			styles.TotalStyle.Render(format.Duration(e.Seconds)) + sep +
			styles.GetShareStyle(e.Percent).Render(fmt.Sprintf("%.1f%% of total", e.Percent)) + sep +
			styles.HelpStyle.Render(fmt.Sprintf("%d files", e.FileCount)),
	)
}

func (m *Model) renderLegend() string {
	return lipgloss.NewStyle().
		MarginTop(1).
		Render(render.Legend(m.state.GetDashboard().Ranking))
}

// renderFooter renders the footer with keyboard shortcuts.
func (m *Model) renderFooter() string {
	shortcuts := []string{
		styles.HelpKeyStyle.Render("↑/↓") + " select",
		styles.HelpKeyStyle.Render("g/G") + " first/last",
		styles.HelpKeyStyle.Render("s") + " save",
	}

	footer := ""
	for i, s := range shortcuts {
		if i > 0 {
			footer += styles.HelpSeparatorStyle.Render(" | ")
		}
		footer += s
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(footer)
}
