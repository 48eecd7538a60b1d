package view

import (
	"strings"
	"time"

	"dgu-live/internal/model"
)

// Defaults used by the operator UI.
const (
	DefaultStaleAfter = 30 * time.Second
	DefaultTick       = 5 * time.Second
)

// Fresh reports whether an update received at last is younger than staleAfter.
// A zero last means no update was ever received.
func Fresh(last, now time.Time, staleAfter time.Duration) bool {
	if last.IsZero() {
		return false
	}
	return now.Sub(last) < staleAfter
}

// ConnectionStatus picks the live status and falls back to the baseline's.
func ConnectionStatus(live, baseline model.ConnStatus) model.ConnStatus {
	if live != model.StatusUnknown {
		return live
	}
	if baseline != model.StatusUnknown {
		return baseline
	}
	return model.StatusOffline
}

// DisplayStatus shows the engine state only while the equipment is reachable.
func DisplayStatus(conn model.ConnStatus, engineState string) string {
	if conn != model.StatusOnline {
		if conn == model.StatusUnknown {
			return string(model.StatusOffline)
		}
		return string(conn)
	}
	if engineState != "" && engineState != string(model.StatusOffline) {
		return engineState
	}
	return string(model.StatusOnline)
}

// EngineState maps controller state text (register 46109, e.g. "Running",
// "Stopped", "Shutdown alarm") to RUN, STOP or ALARM.
func EngineState(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "stop"):
		return "STOP"
	case strings.Contains(t, "shutdown"), strings.Contains(t, "alarm"), strings.Contains(t, "fault"):
		return "ALARM"
	}
	return "RUN"
}

// Label is the operator-facing text of a status.
type Label struct {
	Text    string
	Pulsing bool
}

var labels = map[string]Label{
	"RUN":     {Text: "Running", Pulsing: true},
	"STOP":    {Text: "Stopped"},
	"ALARM":   {Text: "Alarm", Pulsing: true},
	"ONLINE":  {Text: "Online", Pulsing: true},
	"DELAY":   {Text: "Delayed"},
	"OFFLINE": {Text: "Offline"},
}

// StatusLabel maps a display status to its label; unknown statuses render as OFFLINE.
func StatusLabel(status string) Label {
	if l, ok := labels[status]; ok {
		return l
	}
	return labels["OFFLINE"]
}
