// Package metrics holds the Prometheus collectors for fetching, parsing and
// grid views. All recording methods are safe to call on a nil *Metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Cache label values.
const (
	CacheFetch = "fetch"
	CacheParse = "parse"
)

type Metrics struct {
	FetchesTotal  *prometheus.CounterVec
	FetchedBytes  prometheus.Histogram
	ParsesTotal   *prometheus.CounterVec
	ParseDuration prometheus.Histogram
	ParsedRows    prometheus.Histogram
	CacheLookups  *prometheus.CounterVec
	ActiveViews   prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg creates
// unregistered collectors, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "csvgrid_fetches_total",
			Help: "Total number of CSV fetches by outcome",
		}, []string{"outcome"}),
		FetchedBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "csvgrid_fetched_bytes",
			Help:    "Size of fetched CSV bodies in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		ParsesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "csvgrid_parses_total",
			Help: "Total number of CSV parses by outcome",
		}, []string{"outcome"}),
		ParseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "csvgrid_parse_duration_seconds",
			Help:    "Time spent parsing CSV text",
			Buckets: prometheus.DefBuckets,
		}),
		ParsedRows: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "csvgrid_parsed_rows",
			Help:    "Number of rows produced per successful parse",
			Buckets: prometheus.ExponentialBuckets(10, 10, 6),
		}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "csvgrid_cache_lookups_total",
			Help: "Cache lookups by cache and result",
		}, []string{"cache", "result"}),
		ActiveViews: factory.NewGauge(prometheus.GaugeOpts{
			Name: "csvgrid_active_views",
			Help: "Number of grid views currently tracked",
		}),
	}
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// ObserveFetch records one fetch attempt.
func (m *Metrics) ObserveFetch(bytes int64, err error) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.FetchedBytes.Observe(float64(bytes))
	}
}

// ObserveParse records one parse of raw text.
func (m *Metrics) ObserveParse(d time.Duration, rows int, err error) {
	if m == nil {
		return
	}
	m.ParsesTotal.WithLabelValues(outcome(err)).Inc()
	m.ParseDuration.Observe(d.Seconds())
	if err == nil {
		m.ParsedRows.Observe(float64(rows))
	}
}

// CacheHit records a lookup against the named cache.
func (m *Metrics) CacheHit(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) SetActiveViews(n int) {
	if m == nil {
		return
	}
	m.ActiveViews.Set(float64(n))
}
