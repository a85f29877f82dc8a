// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"github.com/prometheus/client_golang/prometheus"
)

// registryMetrics defines the metric collectors of the registry client
type registryMetrics struct {
	queries   *prometheus.CounterVec
	referrals *prometheus.CounterVec
}

func newRegistryMetrics() registryMetrics {
	return registryMetrics{
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathscope_registry_queries_total",
				Help: "Total number of registry queries by server and result.",
			},
			[]string{"host", "result"},
		),
		referrals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathscope_registry_referrals_total",
				Help: "Total number of registry referrals by decision.",
			},
			[]string{"decision"},
		),
	}
}

// List returns all metric collectors
func (m registryMetrics) List() []prometheus.Collector {
	return []prometheus.Collector{m.queries, m.referrals}
}

func (m registryMetrics) observe(host string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.queries.WithLabelValues(host, result).Inc()
}

// gathererMetrics defines the metric collectors of the gatherer
type gathererMetrics struct {
	lookups   *prometheus.CounterVec
	cacheSize prometheus.GaugeFunc
}

func newGathererMetrics(cache *Cache) gathererMetrics {
	return gathererMetrics{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathscope_intel_lookups_total",
				Help: "Total number of intelligence requests by result.",
			},
			[]string{"result"},
		),
		cacheSize: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "pathscope_intel_cache_entries",
				Help: "Number of addresses currently held in the intelligence cache.",
			},
			func() float64 { return float64(cache.Len()) },
		),
	}
}

// List returns all metric collectors
func (m gathererMetrics) List() []prometheus.Collector {
	return []prometheus.Collector{m.lookups, m.cacheSize}
}
