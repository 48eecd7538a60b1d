package model

import (
	"strconv"
	"time"
)

// ParseTimestamp accepts RFC3339 (with or without fractional seconds) or a
// Unix timestamp in seconds. ok is false for empty or unparseable input.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	// naive ISO timestamps from the backend are UTC
	if t, err := time.Parse("2006-01-02T15:04:05.999999999", s); err == nil {
		return t.UTC(), true
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0), true
	}
	return time.Time{}, false
}
