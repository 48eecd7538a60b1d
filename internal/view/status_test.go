package view

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dgu-live/internal/model"
)

func TestFresh(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, Fresh(now.Add(-31*time.Second), now, 30*time.Second))
	assert.True(t, Fresh(now.Add(-29*time.Second), now, 30*time.Second))
	assert.False(t, Fresh(now.Add(-30*time.Second), now, 30*time.Second))
	assert.False(t, Fresh(time.Time{}, now, 30*time.Second))
}

func TestDisplayStatus(t *testing.T) {
	tests := []struct {
		conn   model.ConnStatus
		engine string
		want   string
	}{
		{model.StatusOnline, "RUN", "RUN"},
		{model.StatusOnline, "ALARM", "ALARM"},
		{model.StatusOnline, "OFFLINE", "ONLINE"},
		{model.StatusOnline, "", "ONLINE"},
		{model.StatusDelay, "RUN", "DELAY"},
		{model.StatusOffline, "RUN", "OFFLINE"},
		{model.StatusUnknown, "RUN", "OFFLINE"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayStatus(tt.conn, tt.engine), "%s/%s", tt.conn, tt.engine)
	}
}

func TestEngineState(t *testing.T) {
	assert.Equal(t, "RUN", EngineState("Running"))
	assert.Equal(t, "RUN", EngineState("Idle"))
	assert.Equal(t, "STOP", EngineState("STOPPED"))
	assert.Equal(t, "STOP", EngineState("Emergency stop"))
	assert.Equal(t, "ALARM", EngineState("Shutdown alarm"))
	assert.Equal(t, "ALARM", EngineState("Fault"))
}

func TestConnectionStatus(t *testing.T) {
	assert.Equal(t, model.StatusDelay, ConnectionStatus(model.StatusDelay, model.StatusOnline))
	assert.Equal(t, model.StatusOnline, ConnectionStatus(model.StatusUnknown, model.StatusOnline))
	assert.Equal(t, model.StatusOffline, ConnectionStatus(model.StatusUnknown, model.StatusUnknown))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, Label{Text: "Running", Pulsing: true}, StatusLabel("RUN"))
	assert.Equal(t, StatusLabel("OFFLINE"), StatusLabel("SOMETHING"))
}

func TestFormatMetric(t *testing.T) {
	display, tip := FormatMetric(f64(120.46), "kW", 1, "")
	assert.Equal(t, "120.5 kW", display)
	assert.Empty(t, tip)

	display, tip = FormatMetric(nil, "kW", 1, "")
	assert.Equal(t, "—", display)
	assert.Equal(t, "No data", tip)

	_, tip = FormatMetric(nil, "kW", 1, "NA: breaker open")
	assert.Equal(t, "NA: breaker open", tip)
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "just now", FormatRelativeTime(now.Add(-2*time.Second), now))
	assert.Equal(t, "42s ago", FormatRelativeTime(now.Add(-42*time.Second), now))
	assert.Equal(t, "5m ago", FormatRelativeTime(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h ago", FormatRelativeTime(now.Add(-3*time.Hour), now))
	assert.NotContains(t, FormatRelativeTime(now.Add(-48*time.Hour), now), "ago")
}

func TestRefresh(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := Refresh(ctx, time.Millisecond, func(time.Time) {
		calls++
		if calls == 3 {
			cancel()
		}
	})

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 3)
}
