package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init(Config{Level: "warn"}))
	assert.Equal(t, zerolog.WarnLevel, GetLogger().GetLevel())

	require.NoError(t, Init(Config{Level: "error", Debug: true}))
	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel(), "debug wins over level")

	assert.Error(t, Init(Config{Level: "loud"}))
}

func TestWithSession(t *testing.T) {
	var buf bytes.Buffer
	l := WithSession(zerolog.New(&buf), "abc")

	l.Info().Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "abc", line["session"])
	assert.Equal(t, "hello", line["message"])
}

func TestWithComponent(t *testing.T) {
	require.NoError(t, Init(Config{Level: "info"}))

	l := WithComponent("transport")
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
}
