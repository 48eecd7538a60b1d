// Package metrics exposes session diagnostics as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dgu_live"

// Counters is the push-source side: frames seen and dropped, reconnects.
type Counters interface {
	Frames() uint64
	Discarded() uint64
	Reconnects() uint64
}

// State is the store side.
type State interface {
	Connected() bool
	Len() int
}

// Register adds the session collectors to reg.
func Register(reg prometheus.Registerer, counters Counters, state State) error {
	collectors := []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Total number of frames read from the push channel",
		}, func() float64 { return float64(counters.Frames()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_discarded_total",
			Help:      "Total number of frames or snapshot items dropped as undecodable",
		}, func() float64 { return float64(counters.Discarded()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnect_attempts_total",
			Help:      "Total number of scheduled reconnection attempts",
		}, func() float64 { return float64(counters.Reconnects()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected",
			Help:      "1 while the push channel is open",
		}, func() float64 {
			if state.Connected() {
				return 1
			}
			return 0
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "equipment_tracked",
			Help:      "Number of equipment instances with live state",
		}, func() float64 { return float64(state.Len()) }),
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves the collectors of g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
