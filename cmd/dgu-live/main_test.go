package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dgu-live/internal/config"
	"dgu-live/internal/store"
	"dgu-live/internal/transport"
)

func TestRun_ReturnsSetupErrors(t *testing.T) {
	err := run(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.ErrorContains(t, err, "config")

	err = run("", "carrier-pigeon")
	assert.ErrorContains(t, err, "unknown source")
}

func TestStartSource_CloseReleasesWebsocket(t *testing.T) {
	cfg := config.Default()
	cfg.WS.URL = "ws://127.0.0.1:1/ws"
	st := store.New()

	src, err := startSource(cfg, st, "0123456789abcdef")
	require.NoError(t, err)

	client, ok := src.(*transport.Client)
	require.True(t, ok)

	closed := make(chan struct{})
	go func() {
		src.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}
	assert.Equal(t, transport.StateClosed, client.State())
	assert.False(t, st.Connected())
}

func TestStartSource_UnknownSource(t *testing.T) {
	cfg := config.Default()
	cfg.Source = "carrier-pigeon"

	_, err := startSource(cfg, store.New(), "0123456789abcdef")
	assert.ErrorContains(t, err, "unknown source")
}
