package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors the report service records into.
type Metrics struct {
	ReportViews  *prometheus.CounterVec
	CacheHits    prometheus.Counter
	CacheMisses  prometheus.Counter
	LoadFailures *prometheus.CounterVec
	ViewDuration *prometheus.HistogramVec
	Registry     *prometheus.Registry
}

// NewMetrics builds and registers the collectors on a fresh registry, so the
// /metrics endpoint exposes only what this application emits.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		ReportViews: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "salesdash_report_views_total",
			Help: "Report views served, by report name.",
		}, []string{"report"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "salesdash_dataset_cache_hits_total",
			Help: "Dataset loads answered from the memoization cache.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "salesdash_dataset_cache_misses_total",
			Help: "Dataset loads that had to parse the source files.",
		}),
		LoadFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "salesdash_report_load_failures_total",
			Help: "Report loads that failed, by report name.",
		}, []string{"report"}),
		ViewDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "salesdash_report_view_duration_seconds",
			Help:    "End-to-end pipeline duration per report view.",
			Buckets: prometheus.DefBuckets,
		}, []string{"report"}),
	}
}
