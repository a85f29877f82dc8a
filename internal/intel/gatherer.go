// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/telekom/pathscope/internal/logger"
)

// Gatherer assembles intelligence records from reverse DNS and the
// registries and caches them by address.
type Gatherer struct {
	cache      *Cache
	resolver   Resolver
	registry   Registry
	dnsTimeout time.Duration
	metrics    gathererMetrics
	registryMx []prometheus.Collector
}

// NewGatherer creates a gatherer backed by the given cache, resolver and registry.
func NewGatherer(cache *Cache, resolver Resolver, registry Registry) *Gatherer {
	g := &Gatherer{
		cache:      cache,
		resolver:   resolver,
		registry:   registry,
		dnsTimeout: ReverseLookupTimeout,
		metrics:    newGathererMetrics(cache),
	}
	if rc, ok := registry.(*RegistryClient); ok {
		g.registryMx = rc.metrics.List()
	}
	return g
}

// Gather returns the intelligence for address. It reports false only when
// the address is rejected as malformed, in which case no network call is
// made. Lookup failures leave the affected fields empty.
func (g *Gatherer) Gather(ctx context.Context, address string) (Record, bool) {
	log := logger.FromContext(ctx)

	addr, ok := NormalizeAddress(address)
	if !ok {
		log.DebugContext(ctx, "Rejected malformed address", "address", address)
		g.metrics.lookups.WithLabelValues("rejected").Inc()
		return Record{}, false
	}

	if rec, ok := g.cache.Get(addr); ok {
		g.metrics.lookups.WithLabelValues("hit").Inc()
		return rec, true
	}
	g.metrics.lookups.WithLabelValues("miss").Inc()

	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer("intel.gatherer")
	ctx, span := tracer.Start(ctx, "intel.gather", trace.WithAttributes(
		attribute.String("intel.address", addr),
	))
	defer span.End()

	var (
		name string
		raw  []byte
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		name = g.reverse(egCtx, addr)
		return nil
	})
	eg.Go(func() error {
		raw = g.registry.Lookup(egCtx, addr)
		return nil
	})
	_ = eg.Wait()

	rec := Record{
		Address:  addr,
		Hostname: name,
		Fields:   ParseRegistryResponse(raw),
	}

	// An abandoned lookup is not representative of the address.
	if ctx.Err() != nil {
		return rec, true
	}
	g.cache.Add(rec)
	log.DebugContext(ctx, "Gathered intelligence", "record", rec.String())
	return rec, true
}

// reverse resolves the address to its first name within the lookup bound.
func (g *Gatherer) reverse(ctx context.Context, addr string) string {
	ctx, cancel := context.WithTimeout(ctx, g.dnsTimeout)
	defer cancel()

	names, err := g.resolver.LookupAddr(ctx, addr)
	if err != nil {
		logger.FromContext(ctx).DebugContext(ctx, "Reverse lookup failed", "address", addr, "error", err)
		return ""
	}
	return hostname(names)
}

// ClearCache removes all cached records.
func (g *Gatherer) ClearCache() {
	g.cache.Clear()
}

// CacheLen returns the number of cached records.
func (g *Gatherer) CacheLen() int {
	return g.cache.Len()
}

// Collectors returns the metric collectors of the gatherer and its registry client.
func (g *Gatherer) Collectors() []prometheus.Collector {
	return append(g.metrics.List(), g.registryMx...)
}
