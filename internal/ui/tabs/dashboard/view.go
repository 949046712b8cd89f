package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/codetime-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ui/render"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ui/styles"
)

// View renders the dashboard component.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		render.Dashboard(m.state.GetDashboard(), m.contentWidth()),
	)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// contentWidth is the width inside DocStyle's margins and padding.
func (m *Model) contentWidth() int {
	return max(m.width-6, render.MinWidth)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Code Time")
	subtitle := styles.HelpStyle.Render("Time spent per language")

	week := m.state.GetDashboard().Week
	values := make([]float64, len(week))
	for i, d := range week {
		values[i] = float64(d.Seconds)
	}
	if spark := components.RenderSparkline(values, len(values)); spark != "" {
		subtitle += "  " + lipgloss.NewStyle().Foreground(styles.Primary).Render(spark)
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}
