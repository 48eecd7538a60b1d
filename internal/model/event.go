package model

import "time"

// ConnStatus is the connection status of one equipment instance.
// The zero value means no status has been received yet.
type ConnStatus string

const (
	StatusUnknown ConnStatus = ""
	StatusOnline  ConnStatus = "ONLINE"
	StatusOffline ConnStatus = "OFFLINE"
	StatusDelay   ConnStatus = "DELAY"
)

// Event is one decoded inbound message: *Telemetry, *StatusChange or *Snapshot.
type Event interface {
	eventKind() string
}

// Telemetry carries register readings for one equipment instance.
type Telemetry struct {
	Key       Key
	Timestamp time.Time // zero when the source sent none
	Readings  []Reading
}

// StatusChange sets the connection status of one equipment instance.
type StatusChange struct {
	Key    Key
	Status ConnStatus
}

// Snapshot is a catch-up batch replayed in order after the channel opens.
type Snapshot struct {
	Items   []Event
	Dropped int // items that failed to decode
}

func (*Telemetry) eventKind() string    { return TypeTelemetry }
func (*StatusChange) eventKind() string { return TypeStatusChange }
func (*Snapshot) eventKind() string     { return TypeSnapshot }

// Kind returns the wire discriminant of ev.
func Kind(ev Event) string {
	if ev == nil {
		return ""
	}
	return ev.eventKind()
}
