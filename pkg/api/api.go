// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/telekom/pathscope/internal/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	// DefaultAddress is the listening address used when none is configured.
	DefaultAddress = ":8080"
)

var _ API = (*api)(nil)

//go:generate go tool moq -out api_moq.go . API
type API interface {
	// Run starts the api server and blocks until ctx is done or the server fails.
	Run(ctx context.Context) error
	// Shutdown gracefully stops the api server.
	Shutdown(ctx context.Context) error
	// RegisterRoutes adds routes to the router. It must be called before Run.
	RegisterRoutes(ctx context.Context, routes ...Route) error
	// Handler returns the router of the api.
	Handler() http.Handler
}

// Config is the configuration of the api server
type Config struct {
	// ListeningAddress is the host:port the server listens on
	ListeningAddress string `yaml:"address" mapstructure:"address"`
	// Tls is the tls configuration of the server
	Tls TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// TLSConfig is the tls configuration of the api server
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	CertPath string `yaml:"certPath" mapstructure:"certPath"`
	KeyPath  string `yaml:"keyPath" mapstructure:"keyPath"`
}

// Validate checks the listening address and the tls settings
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListeningAddress); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidAddress, c.ListeningAddress, err)
	}
	if c.Tls.Enabled && (c.Tls.CertPath == "" || c.Tls.KeyPath == "") {
		return ErrInvalidTLSConfig
	}
	return nil
}

// Route is a single endpoint of the api
type Route struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

type api struct {
	server *http.Server
	router chi.Router
	tls    TLSConfig
}

// New creates a new api server from the given configuration
func New(cfg Config) API {
	r := chi.NewRouter()
	return &api{
		server: &http.Server{Addr: cfg.ListeningAddress, Handler: r, ReadHeaderTimeout: readHeaderTimeout},
		router: r,
		tls:    cfg.Tls,
	}
}

// Run serves the api until ctx is done
func (a *api) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	cErr := make(chan error, 1)

	go func() {
		log.InfoContext(ctx, "Serving api", "addr", a.server.Addr, "tls", a.tls.Enabled)
		var err error
		if a.tls.Enabled {
			err = a.server.ListenAndServeTLS(a.tls.CertPath, a.tls.KeyPath)
		} else {
			err = a.server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		cErr <- err
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("failed serving api: %w", ctx.Err())
	case err := <-cErr:
		if err != nil {
			log.ErrorContext(ctx, "Failed to serve api", "error", err)
			return fmt.Errorf("%w: %w", ErrServerStop, err)
		}
		return nil
	}
}

// Shutdown gracefully stops the api server
func (a *api) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.FromContext(ctx).ErrorContext(ctx, "Failed to shutdown api server", "error", err)
		return fmt.Errorf("failed shutting down api server: %w", err)
	}
	return nil
}

// RegisterRoutes registers the default middlewares and the given routes
func (a *api) RegisterRoutes(ctx context.Context, routes ...Route) error {
	a.router.Use(middleware.RequestID, traceRequests, logger.Middleware(ctx), middleware.Recoverer)

	for _, route := range routes {
		switch route.Method {
		case http.MethodGet:
			a.router.Get(route.Path, route.Handler)
		case http.MethodPost:
			a.router.Post(route.Path, route.Handler)
		case http.MethodPut:
			a.router.Put(route.Path, route.Handler)
		case http.MethodDelete:
			a.router.Delete(route.Path, route.Handler)
		case "*":
			a.router.Handle(route.Path, route.Handler)
		default:
			return fmt.Errorf("%w %q for route %s", ErrUnsupportedMethod, route.Method, route.Path)
		}
	}

	a.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(http.StatusText(http.StatusNotFound)))
	})
	return nil
}

// Handler returns the router of the api
func (a *api) Handler() http.Handler {
	return a.router
}

// traceRequests continues the trace of the caller, if the request carries
// one, and wraps the request in a server span named after its route.
func traceRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := otel.Tracer("pathscope.api").Start(ctx, r.Method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
			),
		)
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctx))

		if rctx := chi.RouteContext(ctx); rctx != nil && rctx.RoutePattern() != "" {
			span.SetName(r.Method + " " + rctx.RoutePattern())
			span.SetAttributes(attribute.String("http.route", rctx.RoutePattern()))
		}
	})
}
