// Package metrics exposes Prometheus metrics for scrape runs and lead capture.
//
// Each Recorder owns its registry so tests and multiple servers in one
// process never collide. All methods are safe on a nil Recorder.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "city_events"

// Recorder holds the city-events collectors
type Recorder struct {
	registry *prometheus.Registry

	runs        prometheus.Counter
	outcomes    *prometheus.CounterVec
	fetches     *prometheus.CounterVec
	runDuration prometheus.Histogram
	leads       prometheus.Counter
}

// New creates a recorder with a fresh registry including Go runtime metrics
func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.runs = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scrape_runs_total",
		Help:      "Number of completed reconciliation runs",
	})
	r.outcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scrape_events_total",
		Help:      "Reconciled events by outcome",
	}, []string{"outcome"})
	r.fetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_fetch_total",
		Help:      "Source fetches by source and result",
	}, []string{"source", "result"})
	r.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scrape_duration_seconds",
		Help:      "Time spent on a reconciliation run",
		Buckets:   prometheus.DefBuckets,
	})
	r.leads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leads_total",
		Help:      "Captured leads",
	})

	r.registry.MustRegister(
		r.runs, r.outcomes, r.fetches, r.runDuration, r.leads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveRun records one finished run
func (r *Recorder) ObserveRun(d time.Duration) {
	if r == nil {
		return
	}
	r.runs.Inc()
	r.runDuration.Observe(d.Seconds())
}

// AddOutcome counts reconciled events with the given outcome
func (r *Recorder) AddOutcome(outcome string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.outcomes.WithLabelValues(outcome).Add(float64(n))
}

// ObserveFetch counts one source fetch
func (r *Recorder) ObserveFetch(source string, ok bool) {
	if r == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	r.fetches.WithLabelValues(source, result).Inc()
}

// LeadCaptured counts one lead
func (r *Recorder) LeadCaptured() {
	if r == nil {
		return
	}
	r.leads.Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
