// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package pathscope

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/telekom/pathscope/internal/logger"
	"github.com/telekom/pathscope/pkg/api"
	"github.com/telekom/pathscope/pkg/config"
	"github.com/telekom/pathscope/pkg/metrics"
)

const shutdownTimeout = time.Second * 90

// Pathscope is the main struct of the pathscope service
type Pathscope struct {
	// config is the startup configuration
	config *config.Config
	// version is the build version reported in metrics and the openapi document
	version string
	// core is the trace pipeline
	core *Core
	// api serves the trace and intel endpoints
	api api.API
	// metrics is used to collect metrics
	metrics metrics.Provider
	// cErr is used to handle non-recoverable errors of the components
	cErr chan error
	// cDone is used to signal that pathscope was shut down
	cDone chan struct{}
	// shutOnce is used to ensure that the shutdown function is only called once
	shutOnce sync.Once
}

// New creates a new pathscope service from the given config
func New(cfg *config.Config, version string) *Pathscope {
	return &Pathscope{
		config:   cfg,
		version:  version,
		core:     NewCore(cfg),
		api:      api.New(cfg.Api),
		metrics:  metrics.New(cfg.Telemetry, version),
		cErr:     make(chan error, 1),
		cDone:    make(chan struct{}, 1),
		shutOnce: sync.Once{},
	}
}

// Run starts the service and blocks until it was shut down
func (p *Pathscope) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	log := logger.FromContext(ctx)
	defer cancel()

	err := p.metrics.InitTracing(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	registry := p.metrics.GetRegistry()
	for _, c := range p.core.Collectors() {
		if err := registry.Register(c); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	if err := metrics.RegisterBuildInfo(registry, p.version, p.core.Runner.Command().Name, runtime.GOOS); err != nil {
		return fmt.Errorf("failed to register build info: %w", err)
	}

	go func() {
		p.cErr <- p.startupAPI(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			p.shutdown(ctx)
		case err := <-p.cErr:
			if err != nil {
				log.Error("Non-recoverable error in pathscope component", "error", err)
				p.shutdown(ctx)
			}
		case <-p.cDone:
			log.InfoContext(ctx, "Pathscope was shut down")
			return ErrFinalShutdown
		}
	}
}

// startupAPI registers the routes and runs the api server
func (p *Pathscope) startupAPI(ctx context.Context) error {
	if err := p.api.RegisterRoutes(ctx, p.routes()...); err != nil {
		return fmt.Errorf("failed to register routes: %w", err)
	}
	return p.api.Run(ctx)
}

// shutdown shuts down pathscope and all managed components gracefully.
func (p *Pathscope) shutdown(ctx context.Context) {
	errC := ctx.Err()
	log := logger.FromContext(ctx)
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	p.shutOnce.Do(func() {
		log.InfoContext(ctx, "Shutting down pathscope")
		var sErrs ErrShutdown
		sErrs.errAPI = p.api.Shutdown(ctx)
		sErrs.errMetrics = p.metrics.Shutdown(ctx)
		p.core.Gatherer.ClearCache()

		if sErrs.HasError() {
			log.ErrorContext(ctx, "Failed to shutdown gracefully", "contextError", errC, "errors", sErrs)
		}

		// Signal that shutdown is complete
		p.cDone <- struct{}{}
	})
}
