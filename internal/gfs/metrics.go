package gfs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	downloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "windmap_downloads_total",
		Help: "Forecast offset downloads by outcome",
	}, []string{"outcome"})

	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "windmap_conversions_total",
		Help: "Raw grid conversions by outcome",
	}, []string{"outcome"})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "windmap_acquisition_runs_total",
		Help: "Acquisition runs by outcome",
	}, []string{"outcome"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "windmap_acquisition_run_duration_seconds",
		Help:    "Wall time of one acquisition run including fallbacks",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	queryAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "windmap_query_attempts",
		Help:    "Cycles inspected per document lookup",
		Buckets: []float64{1, 2, 3, 4, 5},
	})

	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "windmap_queries_total",
		Help: "Document lookups by outcome",
	}, []string{"outcome"})
)
