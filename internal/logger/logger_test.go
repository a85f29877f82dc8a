// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return NewLogger(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		lines = append(lines, m)
	}
	return lines
}

func TestNewLogger(t *testing.T) {
	t.Run("custom handler", func(t *testing.T) {
		h := slog.NewJSONHandler(&bytes.Buffer{}, nil)
		assert.Same(t, h, NewLogger(h).Handler())
	})

	t.Run("level from environment", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "DEBUG")
		assert.True(t, NewLogger().Enabled(t.Context(), slog.LevelDebug))
	})
}

func TestNewContextWithLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	parent := IntoContext(t.Context(), newBufferLogger(buf))

	ctx, cancel := NewContextWithLogger(parent)
	assert.Same(t, FromContext(parent), FromContext(ctx))

	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.NoError(t, parent.Err())
}

func TestFromContext(t *testing.T) {
	t.Run("nil context", func(t *testing.T) {
		//nolint:staticcheck // nil is handled explicitly
		assert.NotNil(t, FromContext(nil))
	})

	t.Run("no logger", func(t *testing.T) {
		assert.NotNil(t, FromContext(t.Context()))
	})

	t.Run("span ids are attached", func(t *testing.T) {
		buf := &bytes.Buffer{}
		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    trace.TraceID{0x01, 0x02},
			SpanID:     trace.SpanID{0x03},
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(IntoContext(t.Context(), newBufferLogger(buf)), sc)

		FromContext(ctx).InfoContext(ctx, "hop classified")

		lines := decodeLines(t, buf)
		require.Len(t, lines, 1)
		assert.Equal(t, sc.TraceID().String(), lines[0]["trace_id"])
		assert.Equal(t, sc.SpanID().String(), lines[0]["span_id"])
	})

	t.Run("no span", func(t *testing.T) {
		buf := &bytes.Buffer{}
		ctx := IntoContext(t.Context(), newBufferLogger(buf))

		FromContext(ctx).InfoContext(ctx, "hop classified")

		lines := decodeLines(t, buf)
		require.Len(t, lines, 1)
		assert.NotContains(t, lines[0], "trace_id")
	})
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus float64
	}{
		{
			name: "implicit ok",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("ok"))
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "explicit status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			ctx := IntoContext(t.Context(), newBufferLogger(buf))

			var inner *slog.Logger
			h := middleware.RequestID(Middleware(ctx)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				inner = FromContext(r.Context())
				tt.handler(w, r)
			})))

			req := httptest.NewRequest(http.MethodGet, "/v1/intel/192.0.2.1", http.NoBody)
			h.ServeHTTP(httptest.NewRecorder(), req)

			require.NotNil(t, inner)
			lines := decodeLines(t, buf)
			require.Len(t, lines, 1)
			assert.Equal(t, "Request handled", lines[0]["msg"])
			assert.Equal(t, http.MethodGet, lines[0]["method"])
			assert.Equal(t, "/v1/intel/192.0.2.1", lines[0]["path"])
			assert.Equal(t, tt.wantStatus, lines[0]["status"])
			assert.NotEmpty(t, lines[0]["request_id"])
		})
	}
}

func TestMiddleware_keepsFlusher(t *testing.T) {
	h := Middleware(t.Context())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := w.(http.Flusher)
		assert.True(t, ok, "streaming handlers need to flush")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/trace", http.NoBody))
}

func TestNewHandler(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		level     string
		wantText  bool
		wantLevel slog.Level
	}{
		{name: "defaults", wantLevel: slog.LevelInfo},
		{name: "text debug", format: "TEXT", level: "DEBUG", wantText: true, wantLevel: slog.LevelDebug},
		{name: "lowercase text", format: "text", level: "warn", wantText: true, wantLevel: slog.LevelWarn},
		{name: "json warning", format: "JSON", level: "WARNING", wantLevel: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_FORMAT", tt.format)
			t.Setenv("LOG_LEVEL", tt.level)

			h := newHandler()
			if tt.wantText {
				assert.IsType(t, &slog.TextHandler{}, h)
			} else {
				assert.IsType(t, &slog.JSONHandler{}, h)
			}
			assert.True(t, h.Enabled(t.Context(), tt.wantLevel))
			assert.False(t, h.Enabled(t.Context(), tt.wantLevel-1))
		})
	}
}

func TestGetLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":         slog.LevelInfo,
		"DEBUG":    slog.LevelDebug,
		" debug ":  slog.LevelDebug,
		"INFO":     slog.LevelInfo,
		"WARN":     slog.LevelWarn,
		"WARNING":  slog.LevelWarn,
		"ERROR":    slog.LevelError,
		"UNKNOWN":  slog.LevelInfo,
		"TRACEISH": slog.LevelInfo,
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, getLevel(in))
		})
	}
}
