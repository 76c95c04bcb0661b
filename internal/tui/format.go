package tui

import "fmt"

const metersPerKm = 1000.0

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func formatKm(meters float64) string {
	return fmt.Sprintf("%.1f km", meters/metersPerKm)
}

func formatWatts(w *float64) string {
	if w == nil || *w <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.0fW", *w)
}

func truncateName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
