// Package metrics provides a Prometheus-backed orchestrator.Recorder.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exports routing counters and latencies as Prometheus
// metrics. It satisfies orchestrator.Recorder.
type PrometheusRecorder struct {
	turns     *prometheus.CounterVec
	switches  *prometheus.CounterVec
	failures  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// Options configure a PrometheusRecorder.
type Options struct {
	// Namespace prefixes every metric name. Defaults to "dialogmesh".
	Namespace string

	// Registerer receives the collectors. Defaults to the global default
	// registerer.
	Registerer prometheus.Registerer
}

// NewPrometheusRecorder creates and registers the routing collectors.
func NewPrometheusRecorder(optFns ...func(o *Options)) *PrometheusRecorder {
	opts := Options{
		Namespace:  "dialogmesh",
		Registerer: prometheus.DefaultRegisterer,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := &PrometheusRecorder{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "turns_total",
			Help:      "Committed conversation turns by policy and handler.",
		}, []string{"policy", "handler"}),
		switches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "handler_switches_total",
			Help:      "Turns on which control transferred to a different handler.",
		}, []string{"policy", "handler"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "turn_failures_total",
			Help:      "Turns aborted before commit, by failure kind.",
		}, []string{"policy", "kind"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "turn_duration_seconds",
			Help:      "Wall time of a full turn from routing to commit.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"policy", "handler"}),
	}

	opts.Registerer.MustRegister(r.turns, r.switches, r.failures, r.durations)
	return r
}

// RecordTurn implements orchestrator.Recorder.
func (r *PrometheusRecorder) RecordTurn(policy, handler string, changed bool, dur time.Duration) {
	r.turns.WithLabelValues(policy, handler).Inc()
	if changed {
		r.switches.WithLabelValues(policy, handler).Inc()
	}
	r.durations.WithLabelValues(policy, handler).Observe(dur.Seconds())
}

// RecordFailure implements orchestrator.Recorder.
func (r *PrometheusRecorder) RecordFailure(policy, kind string) {
	r.failures.WithLabelValues(policy, kind).Inc()
}
