package model

import (
	"sort"
	"time"
)

// Reading is one register reading as carried on the wire.
type Reading struct {
	Addr   uint32   `json:"addr"`
	Name   string   `json:"name"`
	Value  *float64 `json:"value"`
	Text   *string  `json:"text"`
	Unit   *string  `json:"unit"`
	Raw    *float64 `json:"raw"`
	Reason *string  `json:"reason"`
	TS     string   `json:"ts,omitempty"`
}

// RegisterValue is the latest accepted value of one register address within
// one equipment instance.
type RegisterValue struct {
	Address    uint32
	Name       string
	Value      *float64 // engineering value, already unit-converted
	Raw        *float64 // device value before conversion, used for sentinel detection
	Text       string
	Unit       string
	Reason     string
	SourceTime time.Time
	ReceivedAt time.Time
}

// NewRegisterValue builds a RegisterValue from a reading. The reading's own ts
// wins over eventTime when it parses.
func NewRegisterValue(r Reading, eventTime, receivedAt time.Time) RegisterValue {
	src := eventTime
	if t, ok := ParseTimestamp(r.TS); ok {
		src = t
	}
	return RegisterValue{
		Address:    r.Addr,
		Name:       r.Name,
		Value:      r.Value,
		Raw:        r.Raw,
		Text:       deref(r.Text),
		Unit:       deref(r.Unit),
		Reason:     deref(r.Reason),
		SourceTime: src,
		ReceivedAt: receivedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// RegisterMap is an immutable address -> value map. Updates return a new map;
// a *RegisterMap that was handed out is never modified, so pointer inequality
// means "changed". A nil *RegisterMap is a valid empty map.
type RegisterMap struct {
	values map[uint32]RegisterValue
}

// Get returns the value stored for addr.
func (m *RegisterMap) Get(addr uint32) (RegisterValue, bool) {
	if m == nil {
		return RegisterValue{}, false
	}
	v, ok := m.values[addr]
	return v, ok
}

// Len returns the number of addresses.
func (m *RegisterMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.values)
}

// Addresses returns the stored addresses in ascending order.
func (m *RegisterMap) Addresses() []uint32 {
	if m == nil {
		return nil
	}
	addrs := make([]uint32, 0, len(m.values))
	for a := range m.values {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// With returns a copy of m in which every given value replaces the entry for
// its address. Later values in vals win over earlier ones.
func (m *RegisterMap) With(vals ...RegisterValue) *RegisterMap {
	next := make(map[uint32]RegisterValue, m.Len()+len(vals))
	if m != nil {
		for a, v := range m.values {
			next[a] = v
		}
	}
	for _, v := range vals {
		next[v.Address] = v
	}
	return &RegisterMap{values: next}
}
