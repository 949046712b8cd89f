package info

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/codetime-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/codetime-dashboard-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderAboutCard(),
	)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

// renderConfigCard renders the tracking and storage settings.
func (m *Model) renderConfigCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"), "")

	if m.config != nil {
		watch := m.config.WatchDir
		if watch == "" {
			watch = "off"
		}
		reminder := "off"
		if m.config.StreakReminder > 0 {
			reminder = m.config.StreakReminder.String()
		}

		rows = append(rows,
			m.renderConfigRow("Store", m.config.StoreBackend),
			m.renderConfigRow("Location", m.config.StoreLocation()),
			m.renderConfigRow("Watch Dir", watch),
			m.renderConfigRow("Settle Period", m.config.SettlePeriod.String()),
			m.renderConfigRow("Save Interval", m.config.PersistInterval.String()),
			m.renderConfigRow("Idle Timeout", m.config.IdleTimeout.String()),
			m.renderConfigRow("Streak Reminder", reminder),
			m.renderConfigRow("Log File", m.config.LogPath),
		)
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About Code Time Dashboard TUI"), "")

	rows = append(rows,
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
		"",
	)

	saved := styles.WarningTextStyle.Render("not yet")
	if at := m.state.GetLastSaved(); !at.IsZero() {
		saved = styles.InfoTextStyle.Render(at.Format("2006-01-02 15:04:05"))
	}
	rows = append(rows, fmt.Sprintf("Last saved: %s", saved))

	if at := m.state.GetLastUpdated(); !at.IsZero() {
		rows = append(rows, fmt.Sprintf("Last refresh: %s", styles.InfoTextStyle.Render(at.Format("15:04:05"))))
	}

	if err := m.state.GetLastError(); err != "" {
		rows = append(rows, fmt.Sprintf("Last error: %s", styles.ErrorTextStyle.Render(err)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
