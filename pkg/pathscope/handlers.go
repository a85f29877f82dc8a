// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package pathscope

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"github.com/telekom/pathscope/internal/hop"
	"github.com/telekom/pathscope/internal/intel"
	"github.com/telekom/pathscope/internal/logger"
	"github.com/telekom/pathscope/pkg/api"
	"github.com/telekom/pathscope/pkg/session"
)

const (
	pathTrace      = "/v1/trace"
	pathIntel      = "/v1/intel/{address}"
	pathIntelCache = "/v1/intel/cache"
	pathOpenAPI    = "/openapi"
	pathMetrics    = "/metrics"
	pathHealth     = "/healthz"

	// keepAliveInterval is how often an idle event stream sends a comment
	// so that proxies keep the connection open.
	keepAliveInterval = 15 * time.Second
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error string `json:"error"`
}

func (p *Pathscope) routes() []api.Route {
	return []api.Route{
		{Path: pathTrace, Method: http.MethodGet, Handler: p.handleTrace},
		{Path: pathIntel, Method: http.MethodGet, Handler: p.handleIntel},
		{Path: pathIntelCache, Method: http.MethodDelete, Handler: p.handleClearCache},
		{Path: pathOpenAPI, Method: http.MethodGet, Handler: p.handleOpenAPI},
		{Path: pathMetrics, Method: http.MethodGet, Handler: promhttp.HandlerFor(
			p.metrics.GetRegistry(),
			promhttp.HandlerOpts{Registry: p.metrics.GetRegistry()},
		).ServeHTTP},
		{Path: pathHealth, Method: http.MethodGet, Handler: p.handleHealth},
	}
}

// handleTrace streams the events of a new trace as server-sent events.
// The trace ends when the client disconnects.
func (p *Pathscope) handleTrace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	target := r.URL.Query().Get("target")
	if !session.ValidTarget(target) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid target %q", target))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	tr := p.core.Tracer.Start(ctx, target)
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-tr.Events():
			if !ok {
				return
			}
			b, err := json.Marshal(ev)
			if err != nil {
				log.ErrorContext(ctx, "Failed to encode event", "type", ev.Type, "error", err)
				continue
			}
			if err := writeEvent(w, ev.Type, b); err != nil {
				log.DebugContext(ctx, "Client went away", "error", err)
				tr.Cancel()
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				tr.Cancel()
				return
			}
			flusher.Flush()
		}
	}
}

// writeEvent writes an encoded event in the server-sent events format
func writeEvent(w http.ResponseWriter, typ session.EventType, data []byte) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", typ, data)
	return err
}

// handleIntel returns the intelligence record of a single address
func (p *Pathscope) handleIntel(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	rec, ok := p.core.Gatherer.Gather(r.Context(), address)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("not an ip address: %q", address))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleClearCache drops all cached intelligence records
func (p *Pathscope) handleClearCache(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).InfoContext(r.Context(), "Clearing intel cache", "entries", p.core.Gatherer.CacheLen())
	p.core.Gatherer.ClearCache()
	w.WriteHeader(http.StatusNoContent)
}

func (p *Pathscope) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleOpenAPI serves the openapi document as json, or as yaml when asked for
func (p *Pathscope) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := p.openAPI(r)
	if err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "Failed to build openapi document", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build openapi document")
		return
	}

	if r.URL.Query().Get("format") == "yaml" || strings.Contains(r.Header.Get("Accept"), "yaml") {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		if err := enc.Encode(doc); err != nil {
			logger.FromContext(ctx).ErrorContext(ctx, "Failed to encode openapi document", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (p *Pathscope) openAPI(r *http.Request) (*openapi3.T, error) {
	target := openapi3.NewQueryParameter("target").
		WithRequired(true).
		WithDescription("hostname or ip address to trace").
		WithSchema(openapi3.NewStringSchema())
	address := openapi3.NewPathParameter("address").
		WithDescription("ipv4 or ipv6 address").
		WithSchema(openapi3.NewStringSchema())

	return api.OpenAPI(r.Context(), p.openAPIVersion(),
		[]api.Schema{
			{Name: "Event", Value: session.Event{}},
			{Name: "Hop", Value: hop.Classified{}},
			{Name: "Intel", Value: intel.Record{}},
		},
		[]api.Operation{
			{
				Path:        pathTrace,
				Method:      http.MethodGet,
				Summary:     "Trace the route to a target and stream the events",
				Parameters:  openapi3.Parameters{{Value: target}},
				ContentType: "text/event-stream",
				Schema:      "Event",
				Status:      map[int]string{http.StatusBadRequest: "Invalid target"},
			},
			{
				Path:        pathIntel,
				Method:      http.MethodGet,
				Summary:     "Gather intelligence about an address",
				Parameters:  openapi3.Parameters{{Value: address}},
				ContentType: "application/json",
				Schema:      "Intel",
				Status:      map[int]string{http.StatusNotFound: "Not an ip address"},
			},
			{
				Path:    pathIntelCache,
				Method:  http.MethodDelete,
				Summary: "Clear the intelligence cache",
				Status:  map[int]string{http.StatusNoContent: "Cache cleared"},
			},
		},
	)
}

func (p *Pathscope) openAPIVersion() string {
	if p.version == "" {
		return "dev"
	}
	return p.version
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
