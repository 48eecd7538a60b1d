package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dgu-live/internal/model"
)

func TestFleet(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	known := model.NewKey("SN100", "pcc", "1")
	liveOnly := model.NewKey("SN100", "pcc", "2")

	live := map[model.Key]Live{
		known:    {Status: model.StatusDelay},
		liveOnly: {Status: model.StatusOnline, LastUpdate: now.Add(-time.Second)},
	}
	lookup := func(k model.Key) Live { return live[k] }

	cards := Fleet(
		[]model.Baseline{{RouterSN: "SN100", EquipType: "pcc", PanelID: 1, EngineState: "RUN"}},
		[]model.Key{known, liveOnly},
		lookup, now, DefaultRegisters(), DefaultStaleAfter,
	)
	require.Len(t, cards, 2)

	assert.Equal(t, known, cards[0].Key)
	assert.Equal(t, "DELAY", cards[0].Status)
	assert.False(t, cards[0].Fresh)

	assert.Equal(t, liveOnly, cards[1].Key)
	assert.Equal(t, "pcc #2", cards[1].Name)
	assert.Equal(t, "ONLINE", cards[1].Status)
	assert.True(t, cards[1].Fresh)
}

func TestFleet_LiveOnlyNonNumericPanel(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	lettered := model.NewKey("SN1", "pcc", "A")
	zero := model.NewKey("SN1", "pcc", "0")
	lookup := func(model.Key) Live { return Live{Status: model.StatusOnline, LastUpdate: now} }

	cards := Fleet(nil, []model.Key{lettered, zero}, lookup, now, DefaultRegisters(), DefaultStaleAfter)
	require.Len(t, cards, 2)

	assert.Equal(t, lettered, cards[0].Key)
	assert.Equal(t, "pcc #A", cards[0].Name)
	assert.Equal(t, zero, cards[1].Key)
	assert.NotEqual(t, cards[0].Key, cards[1].Key)
}
