package store

import (
	"maps"

	"dgu-live/internal/model"
)

// txn builds the next state version. Maps are cloned on first write so the
// published version is never touched.
type txn struct {
	prev      *state
	next      *state
	ownEquip  bool
	ownDrifts bool
	dirty     bool
}

// begin must be called with s.mu held.
func (s *Store) begin() *txn {
	prev := s.current.Load()
	next := *prev
	return &txn{prev: prev, next: &next}
}

func (t *txn) setEquipment(k model.Key, e *Equipment) {
	if !t.ownEquip {
		t.next.equipment = maps.Clone(t.next.equipment)
		t.ownEquip = true
	}
	t.next.equipment[k] = e
	t.dirty = true
}

func (t *txn) setDrift(site string, d int) {
	if !t.ownDrifts {
		t.next.drifts = maps.Clone(t.next.drifts)
		t.ownDrifts = true
	}
	t.next.drifts[site] = d
	t.dirty = true
}

// commit publishes t.next and wakes Changed waiters. Must be called with s.mu held.
func (s *Store) commit(t *txn) {
	if !t.dirty {
		return
	}
	t.next.version = t.prev.version + 1
	t.next.changed = make(chan struct{})
	s.current.Store(t.next)
	close(t.prev.changed)
}
