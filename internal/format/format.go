// Package format converts second counts into display strings.
package format

import "fmt"

// Duration formats seconds as a compact human-readable duration.
// Values under a minute keep their seconds, values under an hour show whole
// minutes, and anything longer shows hours and minutes.
func Duration(seconds int64) string {
	if seconds <= 0 {
		return "0s"
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm", seconds/60)
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if minutes == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// Hours formats seconds as fractional hours with one decimal place.
func Hours(seconds int64) string {
	if seconds <= 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(seconds)/3600)
}

// Clock formats seconds as HH:MM:SS. Hours are not wrapped at 24.
func Clock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
