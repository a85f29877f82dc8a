// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package pathscope

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/telekom/pathscope/internal/intel"
	"github.com/telekom/pathscope/internal/probe"
	"github.com/telekom/pathscope/pkg/config"
	"github.com/telekom/pathscope/pkg/session"
)

// Core is the trace pipeline: the probe runner, the intelligence gatherer
// with its cache, and the tracer combining both.
type Core struct {
	Runner   *probe.Runner
	Gatherer *intel.Gatherer
	Tracer   *session.Tracer
}

// NewCore builds the trace pipeline for the platform's probe command.
func NewCore(cfg *config.Config) *Core {
	runner := probe.NewRunner(probe.DefaultCommand())
	gatherer := intel.NewGatherer(
		intel.NewCache(intel.DefaultCacheSize),
		intel.NewResolver(cfg.Intel.Nameserver),
		intel.NewRegistryClient(cfg.Intel.Retry),
	)
	return &Core{
		Runner:   runner,
		Gatherer: gatherer,
		Tracer:   session.NewTracer(session.NewProbeRunner(runner), gatherer, cfg.Intel.MaxConcurrent),
	}
}

// Collectors returns the metric collectors of all pipeline components.
func (c *Core) Collectors() []prometheus.Collector {
	var cs []prometheus.Collector
	cs = append(cs, c.Runner.Collectors()...)
	cs = append(cs, c.Gatherer.Collectors()...)
	cs = append(cs, c.Tracer.Collectors()...)
	return cs
}
