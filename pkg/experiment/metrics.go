package experiment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the driver's Prometheus instruments.
type Metrics struct {
	CellsTotal   *prometheus.CounterVec
	CellDuration prometheus.Histogram
	RunsTotal    *prometheus.CounterVec
}

// NewMetrics registers the driver metrics with reg. A nil reg creates
// unregistered instruments, which is handy in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CellsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reviewml",
			Name:      "cells_total",
			Help:      "Grid cells evaluated, by outcome code",
		}, []string{"mode", "code"}),
		CellDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "reviewml",
			Name:      "cell_duration_seconds",
			Help:      "Time to sample, fit and score one grid cell",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reviewml",
			Name:      "runs_total",
			Help:      "Grid runs, by final status",
		}, []string{"mode", "status"}),
	}
}
