package components

import (
	"fmt"
	"math"
	"time"
)

// FormatCount formats large counters with K/M suffixes
func FormatCount(n int64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}

// FormatDuration formats a duration compactly for table columns,
// e.g. "850ms", "12s", "4m05s", "2h30m".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	d = d.Round(time.Second)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh%02dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm%02ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// FormatPercent formats a 0-100 percentage, guarding against NaN and Inf
func FormatPercent(value float64, precision int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "0.0%"
	}

	format := fmt.Sprintf("%%.%df%%%%", precision)
	return fmt.Sprintf(format, value)
}

// Truncate shortens a string to maxLen, ending in "..." when it was cut
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
