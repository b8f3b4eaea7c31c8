package tui

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// formatUntil renders how far away a trip date is, relative to now.
func formatUntil(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	day := func(x time.Time) time.Time {
		y, m, d := x.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, x.Location())
	}
	days := int(day(t.In(now.Location())).Sub(day(now)).Hours() / 24)
	switch {
	case days == 0:
		return "hoy"
	case days == 1:
		return "mañana"
	case days == -1:
		return "ayer"
	case days > 1:
		return fmt.Sprintf("en %d días", days)
	default:
		return fmt.Sprintf("hace %d días", -days)
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen < 1 {
		return ""
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// clampCursor keeps a list cursor inside [0, n).
func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}
