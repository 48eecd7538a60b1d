package transport

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the read side of a live channel. *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Dialer opens a channel to rawURL.
type Dialer interface {
	Dial(ctx context.Context, rawURL string) (Conn, error)
}

type wsDialer struct {
	d *websocket.Dialer
}

// NewWebsocketDialer returns a Dialer backed by gorilla/websocket.
func NewWebsocketDialer(handshakeTimeout time.Duration) Dialer {
	return &wsDialer{d: &websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: handshakeTimeout,
	}}
}

func (w *wsDialer) Dial(ctx context.Context, rawURL string) (Conn, error) {
	conn, resp, err := w.d.DialContext(ctx, rawURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial: %w (status %s)", err, resp.Status)
		}
		return nil, fmt.Errorf("dial: %w", err)
	}
	return conn, nil
}

// BuildURL appends the token and optional subscription filter as query
// parameters; the handshake carries no custom headers.
func BuildURL(base, token, subscribe string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", base, err)
	}
	q := u.Query()
	q.Set("token", token)
	if subscribe != "" {
		q.Set("subscribe", subscribe)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
