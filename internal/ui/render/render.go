// Package render turns dashboard data into terminal text. It is shared by the
// TUI dashboard tab and the report command.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/codetime-dashboard-tui/internal/dashboard"
	"github.com/j-veylop/codetime-dashboard-tui/internal/format"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ui/styles"
)

const (
	// MinWidth is the narrowest layout rendered.
	MinWidth = 40
	// MaxRanked is the number of categories drawn in the ranking chart.
	MaxRanked = 8

	chartHeight = 6
)

// Dashboard renders the full dashboard at the given width.
func Dashboard(data dashboard.Data, width int) string {
	width = max(width, MinWidth)

	sections := []string{Header(data)}
	if data.TotalSeconds == 0 {
		sections = append(sections, "", styles.HelpStyle.Render("No coding time recorded yet."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections,
		"",
		section("Languages", Ranking(data.Ranking, width)),
		"",
		section("Last 7 days", Week(data.Week, width)),
		"",
		section("Hours of day", Hours(data)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func section(title, body string) string {
	icon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	return lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s %s", icon, styles.SubTitleStyle.UnsetMarginBottom().Render(title)),
		body,
	)
}

// Header renders the status indicator and the headline totals.
func Header(data dashboard.Data) string {
	status := styles.StatusIdleStyle.Render(data.Status.String())
	if data.Status.Active {
		status = styles.StatusActiveStyle.Render(data.Status.String())
	}

	totals := fmt.Sprintf("%s %s   %s %s",
		styles.HelpStyle.Render("Total"),
		styles.TotalStyle.Render(format.Duration(data.TotalSeconds)),
		styles.HelpStyle.Render("Top"),
		styles.TotalStyle.Render(data.Top),
	)
	return lipgloss.JoinVertical(lipgloss.Left, status, totals)
}

// Ranking renders the top categories as a bar chart.
func Ranking(entries []dashboard.Entry, width int) string {
	if len(entries) > MaxRanked {
		entries = entries[:MaxRanked]
	}

	items := make([]components.BarItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, components.BarItem{
			Label:  e.Name,
			Value:  float64(e.Seconds),
			Color:  e.Color,
			Suffix: fmt.Sprintf("%-7s %5.1f%%", format.Duration(e.Seconds), e.Percent),
		})
	}
	return components.RenderBarChart(items, width)
}

// Week renders hours per day for the last seven days, oldest first.
func Week(days [dashboard.WeekDays]dashboard.Day, width int) string {
	values := make([]float64, len(days))
	labels := make([]string, len(days))
	for i, d := range days {
		values[i] = float64(d.Seconds) / 3600
		labels[i] = fmt.Sprintf("%s %s", d.Label, format.Duration(d.Seconds))
	}

	chart := components.RenderLineChart(values, max(width-12, 20), chartHeight, "hours per day")
	return lipgloss.JoinVertical(lipgloss.Left,
		chart,
		styles.HelpStyle.Render(strings.Join(labels, "  ")),
	)
}

// Hours renders the hourly profile as a heat strip with the peak hour.
func Hours(data dashboard.Data) string {
	hours := make([]int, len(data.Hours))
	values := make([]float64, len(data.Hours))
	for i, h := range data.Hours {
		hours[i] = h.Hour
		values[i] = float64(h.Seconds)
	}

	peak := "none"
	if data.PeakHour >= 0 {
		peak = fmt.Sprintf("%02d:00", data.PeakHour)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		components.RenderHourlyHeatmap(hours, values),
		styles.HelpStyle.Render("Peak hour "+peak),
	)
}

// Legend renders color swatches for the top categories.
func Legend(entries []dashboard.Entry) string {
	if len(entries) > MaxRanked {
		entries = entries[:MaxRanked]
	}
	items := make([]components.LegendItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, components.LegendItem{Label: e.Name, Color: lipgloss.Color(e.Color)})
	}
	return components.RenderLegend(items)
}
