package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder exposes operational counters for the collection pipeline.
type Recorder struct {
	registry *prometheus.Registry

	mutations    *prometheus.CounterVec
	lookups      *prometheus.CounterVec
	saveFailures prometheus.Counter
	records      *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with its own registry so tests can run
// side by side without duplicate-registration panics.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waxshelf",
			Name:      "mutations_total",
			Help:      "Collection mutations by operation.",
		}, []string{"op"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waxshelf",
			Name:      "catalog_lookups_total",
			Help:      "Catalog metadata lookups by provider and outcome.",
		}, []string{"provider", "outcome"}),
		saveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waxshelf",
			Name:      "save_failures_total",
			Help:      "Persistence save failures that triggered a rollback.",
		}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "waxshelf",
			Name:      "records",
			Help:      "Records in the active collection by ownership state.",
		}, []string{"state"}),
	}
	r.registry.MustRegister(r.mutations, r.lookups, r.saveFailures, r.records)
	return r
}

// Registry returns the prometheus registry backing this recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Mutation records one successful mutation of the given operation.
func (r *Recorder) Mutation(op string) {
	r.mutations.WithLabelValues(op).Inc()
}

// Lookup records one catalog lookup outcome ("hit", "miss" or "error").
func (r *Recorder) Lookup(provider, outcome string) {
	r.lookups.WithLabelValues(provider, outcome).Inc()
}

// SaveFailure records one persistence failure.
func (r *Recorder) SaveFailure() {
	r.saveFailures.Inc()
}

// SetRecordCounts updates the active-collection gauges.
func (r *Recorder) SetRecordCounts(owned, wanted int) {
	r.records.WithLabelValues("owned").Set(float64(owned))
	r.records.WithLabelValues("wanted").Set(float64(wanted))
}
