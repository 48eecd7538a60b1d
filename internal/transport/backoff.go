package transport

import "time"

// Default reconnect delays.
const (
	DefaultBackoffFloor   = time.Second
	DefaultBackoffCeiling = 30 * time.Second
)

// Backoff yields exponentially growing delays: floor, 2*floor, ... capped at ceiling.
// It is not safe for concurrent use.
type Backoff struct {
	floor   time.Duration
	ceiling time.Duration
	next    time.Duration
}

// NewBackoff returns a Backoff starting at floor. Non-positive values fall back to the defaults.
func NewBackoff(floor, ceiling time.Duration) *Backoff {
	if floor <= 0 {
		floor = DefaultBackoffFloor
	}
	if ceiling <= 0 {
		ceiling = DefaultBackoffCeiling
	}
	if ceiling < floor {
		ceiling = floor
	}
	return &Backoff{floor: floor, ceiling: ceiling, next: floor}
}

// Next returns the current delay and doubles it for the following call.
func (b *Backoff) Next() time.Duration {
	d := b.next
	b.next = min(b.next*2, b.ceiling)
	return d
}

// Reset drops the delay back to the floor.
func (b *Backoff) Reset() {
	b.next = b.floor
}
