// Package utils holds small formatting helpers shared by the CLI.
package utils

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the layout used for modification times in tables.
const TimestampLayout = "2006-01-02 15:04"

// FormatTimestamp formats t in local time, or "unknown" for the zero time.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format(TimestampLayout)
}

// FormatDuration formats a duration as a human-readable string with two units max.
// E.g., "5d 3h", "2h 30m", "45s"
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	totalSeconds := int(d.Seconds())
	days := totalSeconds / 86400
	hours := (totalSeconds % 86400) / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// FormatAge describes how long ago t was relative to now.
// E.g., "2h 30m ago", "just now", "unknown"
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	d := now.Sub(t)
	if d < time.Second {
		return "just now"
	}
	return FormatDuration(d) + " ago"
}

// YesNo renders a flag for table output.
func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Truncate shortens s to at most max runes, ending in "..." when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return strings.Repeat(".", max)
	}
	return string(r[:max-3]) + "..."
}
