package probe

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes each check's last outcome and the prober's view of chain
// state as Prometheus gauges, grounded on the teacher's namespaced
// GaugeVec/CounterVec registration pattern.
type Metrics struct {
	up         *prometheus.GaugeVec
	lastHeight prometheus.Gauge
	lastEpoch  prometheus.Gauge
}

// NewMetrics builds and registers the prober's gauges against reg. Passing
// a fresh prometheus.NewRegistry() keeps tests free of global registry
// collisions; cmd/healthprobe likewise passes its own fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		up: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "namadrift",
			Subsystem: "probe",
			Name:      "check_up",
			Help:      "1 if the named liveness check last succeeded, 0 otherwise.",
		}, []string{"check"}),
		lastHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "namadrift",
			Subsystem: "probe",
			Name:      "last_block_height",
			Help:      "Latest chain height observed by HeightCheck.",
		}),
		lastEpoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "namadrift",
			Subsystem: "probe",
			Name:      "last_epoch",
			Help:      "Latest chain epoch observed by EpochCheck.",
		}),
	}
	reg.MustRegister(m.up, m.lastHeight, m.lastEpoch)
	return m
}

// Observe records ok for the named check in the check_up gauge. The
// height/epoch gauges are refreshed separately by SyncState.
func (m *Metrics) Observe(name string, ok bool) {
	value := 0.0
	if ok {
		value = 1.0
	}
	m.up.WithLabelValues(name).Set(value)
}

// SyncState refreshes the height/epoch gauges from the prober's state,
// called after each tick in which at least one check ran.
func (m *Metrics) SyncState(state *State) {
	m.lastHeight.Set(float64(state.LastBlockHeight))
	m.lastEpoch.Set(float64(state.LastEpoch))
}
