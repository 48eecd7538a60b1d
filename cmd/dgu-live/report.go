package main

import (
	"time"

	"github.com/rs/zerolog"

	"dgu-live/internal/store"
	"dgu-live/internal/view"
)

type summary struct {
	connected bool
	total     int
	fresh     int
}

// reporter logs the operator view: one debug line per card on every tick and
// an info line whenever the fleet summary changes.
type reporter struct {
	log  zerolog.Logger
	last summary
}

func (r *reporter) report(st *store.Store, cards []view.Card, now time.Time) {
	s := summary{connected: st.Connected(), total: len(cards)}
	for _, c := range cards {
		if c.Fresh {
			s.fresh++
		}
		load, _ := view.FormatMetric(c.CurrentLoadKW, "kW", 1, "")
		temp, _ := view.FormatMetric(c.OilTempC, "°C", 1, "")
		hours, _ := view.FormatMetric(c.EngineHours, "h", 0, "")
		seen := "never"
		if !c.LastUpdate.IsZero() {
			seen = view.FormatRelativeTime(c.LastUpdate, now)
		}
		r.log.Debug().
			Str("key", c.Key.String()).
			Str("name", c.Name).
			Str("status", view.StatusLabel(c.Status).Text).
			Bool("fresh", c.Fresh).
			Str("seen", seen).
			Str("load", load).
			Str("oil_temp", temp).
			Str("engine_hours", hours).
			Msg("card")
	}

	if s != r.last {
		r.log.Info().
			Bool("connected", s.connected).
			Int("equipment", s.total).
			Int("fresh", s.fresh).
			Msg("fleet")
		r.last = s
	}
}
