// Package store reconciles push-channel events into per-equipment live state.
//
// Every committed update publishes a new immutable state version. Maps and
// records handed to readers are never modified afterwards, so consumers can
// detect change by comparing pointers or versions.
package store

import (
	"maps"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"dgu-live/internal/model"
)

// Equipment is the live state of one equipment instance. Values are immutable
// once returned by the Store.
type Equipment struct {
	Registers  *model.RegisterMap
	Status     model.ConnStatus
	LastUpdate time.Time // client clock; zero until the first telemetry event
}

type state struct {
	equipment map[model.Key]*Equipment
	drifts    map[string]int
	connected bool
	version   uint64
	changed   chan struct{} // closed when this version is superseded
}

// Store is the session-scoped reconciliation store. Writes are serialised;
// reads are lock-free against the latest published version.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[state]
	now     func() time.Time
	logger  zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for receipt timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for per-message debug lines.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&state{
		equipment: map[model.Key]*Equipment{},
		drifts:    map[string]int{},
		changed:   make(chan struct{}),
	})
	return s
}

// Apply applies one decoded event. Snapshot items are applied in order through
// the single-event path and published as one version.
func (s *Store) Apply(ev model.Event) {
	if ev == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.begin()
	received := s.now()
	if snap, ok := ev.(*model.Snapshot); ok {
		for _, item := range snap.Items {
			s.applyOne(tx, item, received)
		}
	} else {
		s.applyOne(tx, ev, received)
	}
	s.commit(tx)
}

// SetConnected records whether the push channel is open.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Load().connected == connected {
		return
	}
	tx := s.begin()
	tx.next.connected = connected
	tx.dirty = true
	s.commit(tx)
}

func (s *Store) applyOne(tx *txn, ev model.Event, received time.Time) {
	switch ev := ev.(type) {
	case *model.Telemetry:
		s.applyTelemetry(tx, ev, received)
	case *model.StatusChange:
		prev := tx.next.equipment[ev.Key]
		next := &Equipment{Status: ev.Status}
		if prev != nil {
			next.Registers = prev.Registers
			next.LastUpdate = prev.LastUpdate
		}
		tx.setEquipment(ev.Key, next)
	default:
		// nested snapshots are not replayed
	}
}

func (s *Store) applyTelemetry(tx *txn, ev *model.Telemetry, received time.Time) {
	eventTime := ev.Timestamp
	if eventTime.IsZero() {
		eventTime = received
	}

	var regs *model.RegisterMap
	if prev := tx.next.equipment[ev.Key]; prev != nil {
		regs = prev.Registers
	}
	if len(ev.Readings) > 0 {
		vals := make([]model.RegisterValue, 0, len(ev.Readings))
		for _, r := range ev.Readings {
			vals = append(vals, model.NewRegisterValue(r, eventTime, received))
		}
		regs = regs.With(vals...)
	}

	tx.setEquipment(ev.Key, &Equipment{
		Registers:  regs,
		Status:     model.StatusOnline,
		LastUpdate: received,
	})

	logEv := s.logger.Debug().
		Str("key", ev.Key.String()).
		Int("regs", len(ev.Readings))
	if !ev.Timestamp.IsZero() {
		drift := driftSeconds(received, ev.Timestamp)
		tx.setDrift(ev.Key.Site, drift)
		logEv = logEv.Time("server_time", ev.Timestamp).Int("drift_sec", drift)
	}
	logEv.Msg("telemetry applied")
}

// driftSeconds rounds half up, so -1.5s becomes -1.
func driftSeconds(received, source time.Time) int {
	return int(math.Floor(received.Sub(source).Seconds() + 0.5))
}

// Equipment returns the live state for k. ok is false for keys never seen.
func (s *Store) Equipment(k model.Key) (Equipment, bool) {
	e, ok := s.current.Load().equipment[k]
	if !ok {
		return Equipment{}, false
	}
	return *e, true
}

// Registers returns the register map for k, or nil (an empty map) if unseen.
func (s *Store) Registers(k model.Key) *model.RegisterMap {
	if e, ok := s.current.Load().equipment[k]; ok {
		return e.Registers
	}
	return nil
}

// Status returns the connection status for k, StatusUnknown if unset.
func (s *Store) Status(k model.Key) model.ConnStatus {
	if e, ok := s.current.Load().equipment[k]; ok {
		return e.Status
	}
	return model.StatusUnknown
}

// LastUpdate returns when the last telemetry event for k was received.
func (s *Store) LastUpdate(k model.Key) (time.Time, bool) {
	e, ok := s.current.Load().equipment[k]
	if !ok || e.LastUpdate.IsZero() {
		return time.Time{}, false
	}
	return e.LastUpdate, true
}

// Drift returns the estimated client-minus-source clock offset for a site, in seconds.
func (s *Store) Drift(site string) (int, bool) {
	d, ok := s.current.Load().drifts[site]
	return d, ok
}

// Drifts returns a copy of all per-site drift estimates.
func (s *Store) Drifts() map[string]int {
	return maps.Clone(s.current.Load().drifts)
}

// Connected reports the process-wide connection flag.
func (s *Store) Connected() bool {
	return s.current.Load().connected
}

// Keys returns every known equipment key, ordered by their string form.
func (s *Store) Keys() []model.Key {
	st := s.current.Load()
	keys := make([]model.Key, 0, len(st.equipment))
	for k := range st.equipment {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Len returns the number of known equipment instances.
func (s *Store) Len() int {
	return len(s.current.Load().equipment)
}

// Version increases by one on every committed update.
func (s *Store) Version() uint64 {
	return s.current.Load().version
}

// Changed returns a channel that is closed on the next committed update.
func (s *Store) Changed() <-chan struct{} {
	return s.current.Load().changed
}
