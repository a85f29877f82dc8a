// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics defines the metric collectors of the probe runner
type metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// newMetrics initializes metric collectors of the probe runner
func newMetrics() metrics {
	return metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathscope_probe_runs_total",
				Help: "Total number of probe runs by the way they ended.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pathscope_probe_duration_seconds",
				Help:    "Histogram of probe run durations in seconds.",
				Buckets: []float64{1, 2.5, 5, 10, 20, 30, 45, 60},
			},
			[]string{"outcome"},
		),
	}
}

// List returns all metric collectors
func (m metrics) List() []prometheus.Collector {
	return []prometheus.Collector{m.runs, m.duration}
}

func (m metrics) observe(outcome string, d time.Duration) {
	m.runs.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
}
