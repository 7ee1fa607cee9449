package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gridpulse/csgstat/internal/model"
)

// Metrics are the engine's prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	cycles      *prometheus.CounterVec
	duration    prometheus.Histogram
	unavailable *prometheus.GaugeVec
}

// NewMetrics registers the engine collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "csgstat",
			Name:      "cycles_total",
			Help:      "Refresh cycles by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "csgstat",
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one refresh cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		unavailable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "csgstat",
			Name:      "snapshot_unavailable_fields",
			Help:      "Unavailable fields in the latest snapshot, per account.",
		}, []string{"account"}),
	}
	reg.MustRegister(m.cycles, m.duration, m.unavailable)
	return m
}

func (m *Metrics) observeCycle(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) observeSnapshots(snaps model.Snapshots) {
	if m == nil {
		return
	}
	for number, snap := range snaps {
		n := 0
		for _, f := range snap.Fields() {
			if f.Kind() == model.KindUnavailable {
				n++
			}
		}
		m.unavailable.WithLabelValues(number).Set(float64(n))
	}
}
