package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_DoublesUpToCeiling(t *testing.T) {
	b := NewBackoff(time.Second, 30*time.Second)

	var got []time.Duration
	for i := 0; i < 8; i++ {
		got = append(got, b.Next())
	}

	want := []time.Duration{1, 2, 4, 8, 16, 30, 30, 30}
	for i := range want {
		want[i] *= time.Second
	}
	assert.Equal(t, want, got)

	b.Reset()
	assert.Equal(t, time.Second, b.Next())
}

func TestBackoff_Defaults(t *testing.T) {
	b := NewBackoff(0, 0)
	assert.Equal(t, DefaultBackoffFloor, b.Next())

	b = NewBackoff(5*time.Second, time.Second)
	assert.Equal(t, 5*time.Second, b.Next())
	assert.Equal(t, 5*time.Second, b.Next())
}

func TestBuildURL(t *testing.T) {
	u, err := BuildURL("ws://example.test/ws", "s3cr3t", "SN100")
	assert.NoError(t, err)
	assert.Equal(t, "ws://example.test/ws?subscribe=SN100&token=s3cr3t", u)

	u, err = BuildURL("wss://example.test/ws", "a b", "")
	assert.NoError(t, err)
	assert.Equal(t, "wss://example.test/ws?token=a+b", u)

	_, err = BuildURL("://bad", "t", "")
	assert.Error(t, err)
}
