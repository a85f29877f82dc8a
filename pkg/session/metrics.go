// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics defines the metric collectors of the tracer
type metrics struct {
	traces *prometheus.CounterVec
	active prometheus.Gauge
	hops   *prometheus.CounterVec
}

// newMetrics initializes metric collectors of the tracer
func newMetrics() metrics {
	return metrics{
		traces: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathscope_traces_total",
				Help: "Total number of finished traces by outcome.",
			},
			[]string{"outcome"},
		),
		active: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pathscope_traces_active",
				Help: "Number of traces currently running.",
			},
		),
		hops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathscope_hops_total",
				Help: "Total number of classified hops by category.",
			},
			[]string{"category"},
		),
	}
}

// List returns all metric collectors
func (m metrics) List() []prometheus.Collector {
	return []prometheus.Collector{m.traces, m.active, m.hops}
}
