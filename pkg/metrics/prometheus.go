package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus is a Recorder backed by prometheus/client_golang collectors.
type Prometheus struct {
	mutationsTotal       *prometheus.CounterVec
	mutationDuration     *prometheus.HistogramVec
	constraintViolations *prometheus.CounterVec
	eventsPublished      *prometheus.CounterVec
	digestDuration       *prometheus.HistogramVec
	mementoSnapshots     *prometheus.CounterVec
}

// NewPrometheus registers and returns a Prometheus Recorder on the default registerer.
func NewPrometheus(service string) *Prometheus {
	return NewPrometheusWithRegistry(service, prometheus.DefaultRegisterer)
}

// NewPrometheusWithRegistry is like NewPrometheus but registers on a caller-supplied registerer.
func NewPrometheusWithRegistry(service string, reg prometheus.Registerer) *Prometheus {
	constLabels := prometheus.Labels{"service": service}

	p := &Prometheus{
		mutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "ldpcore_resource_mutations_total",
			Help:        "Total resource-service mutations by operation and interaction model.",
			ConstLabels: constLabels,
		}, []string{"operation", "interaction_model"}),
		mutationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "ldpcore_resource_mutation_duration_seconds",
			Help:        "Resource-service mutation latency.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"operation", "interaction_model"}),
		constraintViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "ldpcore_constraint_violations_total",
			Help:        "Candidate graphs rejected by the constraint validator.",
			ConstLabels: constLabels,
		}, []string{"interaction_model"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "ldpcore_events_published_total",
			Help:        "Events handed to the event bus, labeled by outcome.",
			ConstLabels: constLabels,
		}, []string{"activity_type", "outcome"}),
		digestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "ldpcore_binary_digest_duration_seconds",
			Help:        "Digest computation latency by algorithm.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"algorithm"}),
		mementoSnapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "ldpcore_memento_snapshots_total",
			Help:        "Memento put operations, labeled by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{
		p.mutationsTotal, p.mutationDuration, p.constraintViolations,
		p.eventsPublished, p.digestDuration, p.mementoSnapshots,
	} {
		reg.MustRegister(c)
	}
	return p
}

func (p *Prometheus) MutationCommitted(op, interactionModel string, duration time.Duration) {
	p.mutationsTotal.WithLabelValues(op, interactionModel).Inc()
	p.mutationDuration.WithLabelValues(op, interactionModel).Observe(duration.Seconds())
}

func (p *Prometheus) ConstraintViolation(interactionModel string) {
	p.constraintViolations.WithLabelValues(interactionModel).Inc()
}

func (p *Prometheus) EventPublished(activityType string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	p.eventsPublished.WithLabelValues(activityType, outcome).Inc()
}

func (p *Prometheus) BinaryDigestComputed(algorithm string, duration time.Duration) {
	p.digestDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
}

func (p *Prometheus) MementoSnapshotted(success bool) {
	outcome := "rejected"
	if success {
		outcome = "stored"
	}
	p.mementoSnapshots.WithLabelValues(outcome).Inc()
}

var _ Recorder = (*Prometheus)(nil)
