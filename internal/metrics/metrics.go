// Package metrics exposes the Prometheus instrumentation for the scan
// pipeline. The registry is created per engine instance so tests can gather
// families without cross-test pollution.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all arbscan Prometheus collectors.
type Registry struct {
	reg *prometheus.Registry

	FetchDuration *prometheus.HistogramVec
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	RefreshTotal  *prometheus.CounterVec
	Opportunities prometheus.Gauge
	FilteredTotal *prometheus.CounterVec
}

// NewRegistry creates and registers all collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arbscan_fetch_duration_seconds",
				Help:    "Duration of per-exchange ticker fetches",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 15.0},
			},
			[]string{"exchange", "result"},
		),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbscan_cache_hits_total",
			Help: "Snapshot cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbscan_cache_misses_total",
			Help: "Snapshot cache misses",
		}),
		RefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbscan_refresh_total",
				Help: "Snapshot refresh attempts by result",
			},
			[]string{"result"},
		),
		Opportunities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arbscan_opportunities",
			Help: "Opportunities found by the most recent query",
		}),
		FilteredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbscan_filtered_total",
				Help: "Opportunities rejected by caller filters, by reason",
			},
			[]string{"reason"},
		),
	}

	r.reg.MustRegister(
		r.FetchDuration,
		r.CacheHits,
		r.CacheMisses,
		r.RefreshTotal,
		r.Opportunities,
		r.FilteredTotal,
	)
	return r
}

// Handler serves the registry in Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gather exposes the underlying gatherer for tests.
func (r *Registry) Gather() prometheus.Gatherer {
	return r.reg
}
