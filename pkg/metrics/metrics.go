// Package metrics exposes Prometheus metrics for the query editor.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Collector tracks scenario fetches and editor edits.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry      *prometheus.Registry
	fetchTotal    *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	editTotal     *prometheus.CounterVec
	renderTotal   *prometheus.CounterVec
}

// NewCollector constructs a collector on its own registry.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	fetchTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "testdata",
		Subsystem: "editor",
		Name:      "scenario_fetches_total",
		Help:      "Total number of scenario list fetches.",
	}, []string{"outcome"})

	fetchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "testdata",
		Subsystem: "editor",
		Name:      "scenario_fetch_duration_seconds",
		Help:      "Latency distribution for scenario list fetches.",
		Buckets:   prometheus.DefBuckets,
	})

	editTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "testdata",
		Subsystem: "editor",
		Name:      "edits_total",
		Help:      "Total number of query edits by handler.",
	}, []string{"handler", "run"})

	renderTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "testdata",
		Subsystem: "editor",
		Name:      "renders_total",
		Help:      "Total number of editor renders by load state.",
	}, []string{"state"})

	for _, c := range []prometheus.Collector{fetchTotal, fetchDuration, editTotal, renderTotal} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:      registry,
		fetchTotal:    fetchTotal,
		fetchDuration: fetchDuration,
		editTotal:     editTotal,
		renderTotal:   renderTotal,
	}, nil
}

// RecordFetch records a completed scenario fetch.
func (c *Collector) RecordFetch(duration time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	c.fetchTotal.WithLabelValues(outcome).Inc()
	c.fetchDuration.Observe(duration.Seconds())
}

// RecordEdit records an applied edit and whether it triggered a run.
func (c *Collector) RecordEdit(handler string, run bool) {
	if c == nil {
		return
	}
	c.editTotal.WithLabelValues(handler, strconv.FormatBool(run)).Inc()
}

// RecordRender records a render in the given load state.
func (c *Collector) RecordRender(state string) {
	if c == nil {
		return
	}
	c.renderTotal.WithLabelValues(state).Inc()
}

// Registry returns the registry the collector's metrics live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler exposing the collector's metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
