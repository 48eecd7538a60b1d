package view

import (
	"time"

	"dgu-live/internal/model"
)

// Fleet builds one card per baseline row, then one per live-only key in the
// order given. Live-only cards keep their key as is, panel included. lookup
// returns the live state of a key.
func Fleet(rows []model.Baseline, liveKeys []model.Key, lookup func(model.Key) Live, now time.Time, regs Registers, staleAfter time.Duration) []Card {
	cards := make([]Card, 0, len(rows)+len(liveKeys))
	seen := make(map[model.Key]bool, len(rows))

	for _, row := range rows {
		k := row.Key()
		seen[k] = true
		cards = append(cards, BuildCard(row, lookup(k), now, regs, staleAfter))
	}
	for _, k := range liveKeys {
		if seen[k] {
			continue
		}
		row := model.Baseline{RouterSN: k.Site, EquipType: k.EquipType}
		cards = append(cards, buildCard(k, keyName(k), row, lookup(k), now, regs, staleAfter))
	}
	return cards
}
