package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the auction collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	mutations  *prometheus.CounterVec
	pollErrors prometheus.Counter
	snapshots  *prometheus.CounterVec
	viewers    *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_mutations_total",
			Help: "Admin actions by name and outcome.",
		}, []string{"action", "result"}),
		pollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auction_poll_errors_total",
			Help: "Snapshot reads that failed inside a poll loop.",
		}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_snapshots_sent_total",
			Help: "Snapshots delivered to viewers.",
		}, []string{"transport"}),
		viewers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "auction_viewers",
			Help: "Connected viewer streams.",
		}, []string{"transport"}),
	}
	reg.MustRegister(m.mutations, m.pollErrors, m.snapshots, m.viewers)
	return m
}

func (m *Metrics) Mutation(action string, ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.mutations.WithLabelValues(action, result).Inc()
}

func (m *Metrics) PollError() {
	if m == nil {
		return
	}
	m.pollErrors.Inc()
}

func (m *Metrics) SnapshotSent(transport string) {
	if m == nil {
		return
	}
	m.snapshots.WithLabelValues(transport).Inc()
}

// ViewerConnected increments the viewer gauge and returns the matching decrement.
func (m *Metrics) ViewerConnected(transport string) func() {
	if m == nil {
		return func() {}
	}
	g := m.viewers.WithLabelValues(transport)
	g.Inc()
	return g.Dec
}
