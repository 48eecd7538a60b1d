package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dgu-live/internal/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore() (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	return New(WithClock(clock.Now)), clock
}

func f64(v float64) *float64 { return &v }

func telemetry(k model.Key, ts time.Time, regs map[uint32]float64) *model.Telemetry {
	ev := &model.Telemetry{Key: k, Timestamp: ts}
	for addr, v := range regs {
		ev.Readings = append(ev.Readings, model.Reading{Addr: addr, Value: f64(v)})
	}
	return ev
}

var genKey = model.NewKey("SN100", "pcc", "1")

func TestStore_UnseenKeyReturnsNoData(t *testing.T) {
	s, _ := newTestStore()

	assert.Equal(t, 0, s.Registers(genKey).Len())
	assert.Equal(t, model.StatusUnknown, s.Status(genKey))
	_, ok := s.LastUpdate(genKey)
	assert.False(t, ok)
	_, ok = s.Equipment(genKey)
	assert.False(t, ok)
	_, ok = s.Drift("SN100")
	assert.False(t, ok)
	assert.False(t, s.Connected())
}

func TestStore_TelemetryLastWriteWins(t *testing.T) {
	s, clock := newTestStore()

	s.Apply(telemetry(genKey, time.Time{}, map[uint32]float64{40034: 120.5}))
	clock.Advance(time.Second)
	s.Apply(telemetry(genKey, time.Time{}, map[uint32]float64{40034: 130.0}))

	v, ok := s.Registers(genKey).Get(40034)
	require.True(t, ok)
	assert.InDelta(t, 130.0, *v.Value, 1e-9)
	assert.Equal(t, model.StatusOnline, s.Status(genKey))

	last, ok := s.LastUpdate(genKey)
	require.True(t, ok)
	assert.Equal(t, clock.Now(), last)
	assert.Equal(t, clock.Now(), v.ReceivedAt)
	assert.Equal(t, clock.Now(), v.SourceTime, "source time falls back to receipt time")
}

func TestStore_ArrivalOrderBeatsSourceTimestamp(t *testing.T) {
	s, clock := newTestStore()
	newer := clock.Now()
	older := newer.Add(-time.Minute)

	s.Apply(telemetry(genKey, newer, map[uint32]float64{40034: 1}))
	s.Apply(telemetry(genKey, older, map[uint32]float64{40034: 2}))

	v, _ := s.Registers(genKey).Get(40034)
	assert.InDelta(t, 2.0, *v.Value, 1e-9)
	assert.Equal(t, older, v.SourceTime)
}

func TestStore_TelemetryKeepsOtherRegisters(t *testing.T) {
	s, _ := newTestStore()

	s.Apply(telemetry(genKey, time.Time{}, map[uint32]float64{40034: 1, 40062: 2}))
	s.Apply(telemetry(genKey, time.Time{}, map[uint32]float64{40034: 3}))

	regs := s.Registers(genKey)
	assert.Equal(t, []uint32{40034, 40062}, regs.Addresses())
	v, _ := regs.Get(40062)
	assert.InDelta(t, 2.0, *v.Value, 1e-9)
}

func TestStore_SnapshotReplaysInOrder(t *testing.T) {
	s, _ := newTestStore()

	s.Apply(&model.Snapshot{Items: []model.Event{
		&model.StatusChange{Key: genKey, Status: model.StatusDelay},
		telemetry(genKey, time.Time{}, map[uint32]float64{40062: 300}),
	}})

	assert.Equal(t, model.StatusOnline, s.Status(genKey))
	v, ok := s.Registers(genKey).Get(40062)
	require.True(t, ok)
	assert.InDelta(t, 300.0, *v.Value, 1e-9)
	assert.Equal(t, uint64(1), s.Version(), "a snapshot publishes one version")
}

func TestStore_StatusChangeLeavesRegistersAndLastUpdate(t *testing.T) {
	s, clock := newTestStore()

	s.Apply(telemetry(genKey, time.Time{}, map[uint32]float64{40034: 1}))
	before := s.Registers(genKey)
	lastBefore, _ := s.LastUpdate(genKey)

	clock.Advance(10 * time.Second)
	s.Apply(&model.StatusChange{Key: genKey, Status: model.StatusOffline})

	assert.Equal(t, model.StatusOffline, s.Status(genKey))
	assert.Same(t, before, s.Registers(genKey))
	lastAfter, _ := s.LastUpdate(genKey)
	assert.Equal(t, lastBefore, lastAfter)
}

func TestStore_StatusChangeForUnseenKey(t *testing.T) {
	s, _ := newTestStore()

	s.Apply(&model.StatusChange{Key: genKey, Status: model.StatusDelay})

	assert.Equal(t, model.StatusDelay, s.Status(genKey))
	assert.Equal(t, 0, s.Registers(genKey).Len())
	_, ok := s.LastUpdate(genKey)
	assert.False(t, ok)
}

func TestStore_DriftIsMostRecentSample(t *testing.T) {
	s, clock := newTestStore()
	now := clock.Now()

	s.Apply(telemetry(genKey, now.Add(-4*time.Second), nil))
	d, ok := s.Drift("SN100")
	require.True(t, ok)
	assert.Equal(t, 4, d)

	s.Apply(telemetry(genKey, now.Add(1500*time.Millisecond), nil))
	d, _ = s.Drift("SN100")
	assert.Equal(t, -1, d, "half rounds up, not averaged with the previous sample")

	s.Apply(telemetry(genKey, time.Time{}, nil))
	d, _ = s.Drift("SN100")
	assert.Equal(t, -1, d, "events without a source timestamp keep the estimate")
}

func TestStore_DriftIsPerSite(t *testing.T) {
	s, clock := newTestStore()
	other := model.NewKey("SN200", "pcc", "1")

	s.Apply(telemetry(genKey, clock.Now().Add(-2*time.Second), nil))
	s.Apply(telemetry(other, clock.Now().Add(-7*time.Second), nil))

	assert.Equal(t, map[string]int{"SN100": 2, "SN200": 7}, s.Drifts())
}

func TestStore_PreviousMapsAreNeverMutated(t *testing.T) {
	s, _ := newTestStore()

	s.Apply(telemetry(genKey, time.Time{}, map[uint32]float64{40034: 1}))
	first := s.Registers(genKey)
	firstEq, _ := s.Equipment(genKey)

	s.Apply(telemetry(genKey, time.Time{}, map[uint32]float64{40034: 2}))
	second := s.Registers(genKey)

	assert.NotSame(t, first, second)
	v, _ := first.Get(40034)
	assert.InDelta(t, 1.0, *v.Value, 1e-9)
	assert.Same(t, first, firstEq.Registers)
}

func TestStore_ChangedAndVersion(t *testing.T) {
	s, _ := newTestStore()
	ch := s.Changed()

	select {
	case <-ch:
		t.Fatal("changed before any update")
	default:
	}

	s.SetConnected(true)

	select {
	case <-ch:
	default:
		t.Fatal("changed channel not closed after update")
	}
	assert.True(t, s.Connected())
	assert.Equal(t, uint64(1), s.Version())

	s.SetConnected(true)
	assert.Equal(t, uint64(1), s.Version(), "no-op updates do not publish")

	s.Apply(&model.Snapshot{})
	assert.Equal(t, uint64(1), s.Version())
}

func TestStore_KeysAndLen(t *testing.T) {
	s, _ := newTestStore()
	b := model.NewKey("SN200", "pcc", "0")

	s.Apply(telemetry(b, time.Time{}, nil))
	s.Apply(telemetry(genKey, time.Time{}, nil))
	s.Apply(nil)

	assert.Equal(t, []model.Key{genKey, b}, s.Keys())
	assert.Equal(t, 2, s.Len())
}
