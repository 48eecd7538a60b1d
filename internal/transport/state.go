package transport

// State is the lifecycle state of a Client.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateBackoffWait
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateBackoffWait:
		return "backoff_wait"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}
