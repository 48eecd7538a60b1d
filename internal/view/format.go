package view

import (
	"fmt"
	"strconv"
	"time"
)

// FormatMetric renders a value with its unit. A nil value renders as an em
// dash with the reason (or "No data") as tooltip.
func FormatMetric(value *float64, unit string, decimals int, reason string) (display, tooltip string) {
	if value == nil {
		if reason == "" {
			reason = "No data"
		}
		return "—", reason
	}
	return strconv.FormatFloat(*value, 'f', decimals, 64) + " " + unit, ""
}

// FormatRelativeTime renders t relative to now.
func FormatRelativeTime(t, now time.Time) string {
	diff := int(now.Sub(t) / time.Second)
	switch {
	case diff < 5:
		return "just now"
	case diff < 60:
		return fmt.Sprintf("%ds ago", diff)
	case diff < 3600:
		return fmt.Sprintf("%dm ago", diff/60)
	case diff < 86400:
		return fmt.Sprintf("%dh ago", diff/3600)
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
