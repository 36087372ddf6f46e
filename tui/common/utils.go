package common

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

// RelTime renders a timestamp as a short relative string ("3 minutes ago").
// Zero times render as an empty string rather than a nonsense age.
func RelTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// TruncateLines wraps text to width and keeps at most maxLines lines,
// appending an ellipsis when content was dropped.
func TruncateLines(text string, width, maxLines int) string {
	if width < 12 {
		width = 12
	}
	if maxLines < 1 {
		maxLines = 1
	}
	wrapped := lipgloss.NewStyle().Width(width).Render(text)
	lines := strings.Split(wrapped, "\n")
	if len(lines) <= maxLines {
		return wrapped
	}
	return strings.Join(lines[:maxLines], "\n") + "…"
}

// FitWidth hard-cuts each line of s to the given display width, respecting
// wide runes and any styling already applied.
func FitWidth(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		if ansi.StringWidth(ln) <= width {
			continue
		}
		lines[i] = ansi.Cut(ln, 0, width)
	}
	return strings.Join(lines, "\n")
}
