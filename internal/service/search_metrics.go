package service

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LoadingIndicator is told when an archive query starts and when it completes.
type LoadingIndicator interface {
	Start(tab string)
	Complete(tab, outcome string, started time.Time)
}

// SearchMetrics is the LoadingIndicator backed by Prometheus metrics.
type SearchMetrics struct {
	SearchesInFlight *prometheus.GaugeVec
	SearchesTotal    *prometheus.CounterVec
	SearchDuration   *prometheus.HistogramVec
	DirectoryLoads   *prometheus.CounterVec
}

// NewSearchMetrics creates the metrics and registers them with registry.
func NewSearchMetrics(registry prometheus.Registerer) (*SearchMetrics, error) {
	m := &SearchMetrics{
		SearchesInFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "study_browser_searches_in_flight",
				Help: "Archive queries currently waiting for an answer, by tab",
			},
			[]string{"tab"},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "study_browser_searches_total",
				Help: "Archive queries by tab and outcome",
			},
			[]string{"tab", "outcome"}, // outcome: success, empty, failure, stale
		),
		SearchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "study_browser_search_duration_seconds",
				Help:    "Time taken by archive queries by tab",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"tab"},
		),
		DirectoryLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "study_browser_directory_loads_total",
				Help: "AE directory loads by source (archive, cache) and status",
			},
			[]string{"source", "status"},
		),
	}

	for _, c := range []prometheus.Collector{m.SearchesInFlight, m.SearchesTotal, m.SearchDuration, m.DirectoryLoads} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register search metrics: %w", err)
		}
	}
	return m, nil
}

func (m *SearchMetrics) Start(tab string) {
	m.SearchesInFlight.WithLabelValues(tab).Inc()
}

func (m *SearchMetrics) Complete(tab, outcome string, started time.Time) {
	m.SearchesInFlight.WithLabelValues(tab).Dec()
	m.SearchesTotal.WithLabelValues(tab, outcome).Inc()
	m.SearchDuration.WithLabelValues(tab).Observe(time.Since(started).Seconds())
}

// DirectoryLoaded counts a directory load.
func (m *SearchMetrics) DirectoryLoaded(source string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.DirectoryLoads.WithLabelValues(source, status).Inc()
}
