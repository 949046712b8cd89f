// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/codetime-dashboard-tui/internal/ui/styles"
)

// ChartPrimaryColor is the line color for single-series charts.
var ChartPrimaryColor = lipgloss.Color("#7D56F4")

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.Precision(1),
		asciigraph.LowerBound(0),
		asciigraph.SeriesColors(asciigraph.Purple),
	)
}

// BarItem is one row of a horizontal bar chart.
type BarItem struct {
	Label string
	// Value drives the bar length.
	Value float64
	// Color is a lipgloss color string; empty uses the default text color.
	Color string
	// Suffix is printed after the bar, e.g. a formatted duration.
	Suffix string
}

// RenderBarChart creates a horizontal bar chart scaled to the largest value.
func RenderBarChart(items []BarItem, width int) string {
	if len(items) == 0 {
		return ""
	}

	maxVal := 0.0
	maxLabelLen := 0
	maxSuffixLen := 0
	for _, it := range items {
		maxVal = max(maxVal, it.Value)
		maxLabelLen = max(maxLabelLen, lipgloss.Width(it.Label))
		maxSuffixLen = max(maxSuffixLen, lipgloss.Width(it.Suffix))
	}
	if maxVal == 0 {
		maxVal = 1
	}

	barWidth := width - maxLabelLen - maxSuffixLen - 4 // separators
	if barWidth < 10 {
		barWidth = 10
	}

	lines := make([]string, 0, len(items))
	for _, it := range items {
		barLen := int((it.Value / maxVal) * float64(barWidth))
		if barLen < 0 {
			barLen = 0
		}
		if barLen == 0 && it.Value > 0 {
			barLen = 1
		}

		label := fmt.Sprintf("%-*s", maxLabelLen, it.Label)
		bar := styles.LanguageStyle(it.Color).Render(strings.Repeat("█", barLen))
		track := styles.BarTrackStyle.Render(strings.Repeat("░", barWidth-barLen))
		lines = append(lines, label+" │"+bar+track+" "+it.Suffix)
	}

	return strings.Join(lines, "\n")
}

// HeatmapBlocks are Unicode block characters for heatmaps (low to high intensity).
var HeatmapBlocks = []rune{'·', '░', '▒', '▓', '█'}

// heatIndex maps v onto HeatmapBlocks relative to maxVal. Any non-zero value
// is at least the first shaded block.
func heatIndex(v, maxVal float64) int {
	if v <= 0 || maxVal <= 0 {
		return 0
	}
	idx := 1 + int((v/maxVal)*float64(len(HeatmapBlocks)-2)+0.5)
	return min(idx, len(HeatmapBlocks)-1)
}

// RenderHourlyHeatmap renders one heat cell per value with the hour labels
// underneath. hours and values must line up.
func RenderHourlyHeatmap(hours []int, values []float64) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}

	var cells, labels strings.Builder
	for i, v := range values {
		idx := heatIndex(v, maxVal)

		var style lipgloss.Style
		switch {
		case idx == 0:
			style = lipgloss.NewStyle().Foreground(styles.Subtle)
		case idx <= 2:
			style = lipgloss.NewStyle().Foreground(styles.Success)
		case idx == 3:
			style = lipgloss.NewStyle().Foreground(styles.Warning)
		default:
			style = lipgloss.NewStyle().Foreground(styles.Error)
		}

		block := string(HeatmapBlocks[idx])
		cells.WriteString(style.Render(strings.Repeat(block, 2)))
		cells.WriteString(" ")

		if i < len(hours) {
			labels.WriteString(fmt.Sprintf("%02d ", hours[i]))
		}
	}

	return strings.TrimRight(cells.String(), " ") + "\n" +
		styles.HelpStyle.Render(strings.TrimRight(labels.String(), " "))
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := float64(len(values)) / float64(width)
	if step < 1 {
		step = 1
	}

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := int((val / maxVal) * float64(len(sparkChars)-1))
		normalized = max(0, min(normalized, len(sparkChars)-1))
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
