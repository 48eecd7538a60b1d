// Package transport owns the live push channel: one auto-reconnecting
// websocket whose frames are decoded into model events.
package transport

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"dgu-live/internal/model"
)

// Config configures a Client.
type Config struct {
	URL              string
	Token            string
	Subscribe        string
	BackoffFloor     time.Duration
	BackoffCeiling   time.Duration
	HandshakeTimeout time.Duration

	// Dialer defaults to gorilla/websocket.
	Dialer Dialer
	// Wait sleeps d or until ctx is done, returning false if ctx ended first.
	// Defaults to a timer.
	Wait   func(ctx context.Context, d time.Duration) bool
	Logger *zerolog.Logger
}

// Stats are counters for diagnostics.
type Stats struct {
	Frames     uint64 // frames read from the channel
	Discarded  uint64 // frames or snapshot items that failed to decode
	Reconnects uint64 // reconnects scheduled
	State      State
}

// Client keeps one push channel open until Close is called. Callbacks run
// sequentially on the client's own goroutine in frame-arrival order.
type Client struct {
	url       string
	urlErr    error
	dialer    Dialer
	wait      func(context.Context, time.Duration) bool
	backoff   *Backoff
	logger    zerolog.Logger
	onMessage func(model.Event)
	onStatus  func(bool)

	// ctx is the cancellation token checked before every dial and reconnect.
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	state State
	conn  Conn

	frames     atomic.Uint64
	discarded  atomic.Uint64
	reconnects atomic.Uint64

	closeOnce sync.Once
	done      chan struct{}
}

// Open starts connecting in the background and returns immediately.
// onStatus may be nil.
func Open(cfg Config, onMessage func(model.Event), onStatus func(bool)) *Client {
	c := &Client{
		dialer:    cfg.Dialer,
		wait:      cfg.Wait,
		backoff:   NewBackoff(cfg.BackoffFloor, cfg.BackoffCeiling),
		logger:    zerolog.Nop(),
		onMessage: onMessage,
		onStatus:  onStatus,
		done:      make(chan struct{}),
	}
	if cfg.Logger != nil {
		c.logger = *cfg.Logger
	}
	if c.dialer == nil {
		c.dialer = NewWebsocketDialer(cfg.HandshakeTimeout)
	}
	if c.wait == nil {
		c.wait = sleep
	}
	if c.onStatus == nil {
		c.onStatus = func(bool) {}
	}
	c.url, c.urlErr = BuildURL(cfg.URL, cfg.Token, cfg.Subscribe)
	c.ctx, c.cancel = context.WithCancel(context.Background())

	go c.run()
	return c
}

// Close stops reconnecting, cancels a pending reconnect, closes the live
// channel and waits for the client goroutine to exit. No callback fires after
// Close returns. Close must not be called from inside a callback.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = StateClosed
		c.cancel()
		conn := c.conn
		c.mu.Unlock()

		if conn != nil {
			_ = conn.Close()
		}
	})
	<-c.done
}

// Done is closed once the client goroutine has exited.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats returns a copy of the counters.
func (c *Client) Stats() Stats {
	return Stats{
		Frames:     c.frames.Load(),
		Discarded:  c.discarded.Load(),
		Reconnects: c.reconnects.Load(),
		State:      c.State(),
	}
}

// Frames, Discarded and Reconnects expose single counters.
func (c *Client) Frames() uint64     { return c.frames.Load() }
func (c *Client) Discarded() uint64  { return c.discarded.Load() }
func (c *Client) Reconnects() uint64 { return c.reconnects.Load() }

func (c *Client) run() {
	defer close(c.done)

	for c.transition(StateConnecting) {
		conn, err := c.dial()
		if err != nil {
			c.logger.Debug().Err(err).Msg("push channel connect failed")
		} else if c.attach(conn) {
			c.backoff.Reset()
			c.logger.Info().Msg("push channel open")
			c.onStatus(true)

			err = c.readLoop(conn)
			c.detach()
			c.logger.Info().Err(err).Msg("push channel closed")
		} else {
			_ = conn.Close()
		}

		c.onStatus(false)

		delay := c.backoff.Next()
		if !c.transition(StateBackoffWait) {
			return
		}
		c.reconnects.Add(1)
		c.logger.Debug().Dur("delay", delay).Msg("push channel reconnect scheduled")
		if !c.wait(c.ctx, delay) {
			return
		}
	}
}

func (c *Client) dial() (Conn, error) {
	if c.urlErr != nil {
		return nil, c.urlErr
	}
	return c.dialer.Dial(c.ctx, c.url)
}

// transition moves to s unless the client has been closed.
func (c *Client) transition(s State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return false
	}
	c.state = s
	return true
}

func (c *Client) attach(conn Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return false
	}
	c.conn = conn
	c.state = StateOpen
	return true
}

func (c *Client) detach() {
	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()
}

// readLoop delivers decoded frames until the channel fails. Any read error,
// including a close frame, ends the connection.
func (c *Client) readLoop(conn Conn) error {
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		c.frames.Add(1)

		ev, err := model.DecodeFrame(data)
		if err != nil {
			c.discarded.Add(1)
			c.logger.Debug().Err(err).Int("bytes", len(data)).Msg("dropping malformed frame")
			continue
		}
		if snap, ok := ev.(*model.Snapshot); ok && snap.Dropped > 0 {
			c.discarded.Add(uint64(snap.Dropped))
		}
		c.onMessage(ev)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
