// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package pathscope

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telekom/pathscope/internal/hop"
	"github.com/telekom/pathscope/internal/intel"
	"github.com/telekom/pathscope/internal/probe"
	"github.com/telekom/pathscope/pkg/api"
	"github.com/telekom/pathscope/pkg/metrics"
	"github.com/telekom/pathscope/pkg/session"
)

type scriptedRunner struct {
	script func(cb probe.Callbacks)
}

type noopRun struct{}

func (noopRun) Cancel() {}

func (s scriptedRunner) Start(_ context.Context, _ string, cb probe.Callbacks) session.Run {
	go s.script(cb)
	return noopRun{}
}

func newTestPathscope(t *testing.T, script func(cb probe.Callbacks)) (*Pathscope, *httptest.Server) {
	t.Helper()
	gatherer := intel.NewGatherer(
		intel.NewCache(10),
		&intel.ResolverMock{LookupAddrFunc: func(context.Context, string) ([]string, error) {
			return []string{"gw.example.net."}, nil
		}},
		&intel.RegistryMock{LookupFunc: func(context.Context, string) []byte {
			return []byte("OrgName: Example\nCountry: DE\nOriginAS: AS64500\n")
		}},
	)
	p := &Pathscope{
		version: "v0.0.1",
		core: &Core{
			Runner:   probe.NewRunner(probe.DefaultCommand()),
			Gatherer: gatherer,
			Tracer:   session.NewTracer(scriptedRunner{script: script}, gatherer, 2),
		},
		api:     api.New(api.Config{ListeningAddress: ":0"}),
		metrics: metrics.New(metrics.Config{}, "v0.0.1"),
	}
	require.NoError(t, p.api.RegisterRoutes(t.Context(), p.routes()...))

	srv := httptest.NewServer(p.api.Handler())
	t.Cleanup(srv.Close)
	return p, srv
}

func simpleTrace(cb probe.Callbacks) {
	cb.OnRawLine(" 1  192.0.2.1  1.0 ms  1.0 ms  1.0 ms")
	cb.OnHop(hop.Record{Number: 1, Address: "192.0.2.1", Latencies: []float64{1, 1, 1}})
	cb.OnHop(hop.Record{Number: 2, TimedOut: true, Latencies: []float64{}})
	cb.OnComplete()
}

// readEvents parses a server-sent event stream until it ends.
func readEvents(t *testing.T, body io.Reader) []session.Event {
	t.Helper()
	var events []session.Event
	var name string
	sc := bufio.NewScanner(body)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			var ev session.Event
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
			assert.Equal(t, name, string(ev.Type))
			events = append(events, ev)
		}
	}
	require.NoError(t, sc.Err())
	return events
}

func TestHandleTrace(t *testing.T) {
	_, srv := newTestPathscope(t, simpleTrace)

	resp, err := http.Get(srv.URL + "/v1/trace?target=example.com")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := readEvents(t, resp.Body)
	var types []session.EventType
	var intelEvent *session.Event
	for i, ev := range events {
		types = append(types, ev.Type)
		if ev.Type == session.EventIntel {
			intelEvent = &events[i]
		}
	}
	assert.Equal(t, session.EventRaw, types[0])
	assert.Contains(t, types, session.EventHop)
	assert.Contains(t, types, session.EventComplete)

	require.NotNil(t, intelEvent, "intel event expected")
	assert.Equal(t, 1, intelEvent.HopNumber)
	assert.Equal(t, "gw.example.net", intelEvent.Intel.Hostname)
	assert.Equal(t, "AS64500", intelEvent.Intel.ASN)
}

func TestHandleTrace_UnencodableEventIsSkipped(t *testing.T) {
	_, srv := newTestPathscope(t, func(cb probe.Callbacks) {
		cb.OnHop(hop.Record{Number: 1, Address: "192.0.2.1", Latencies: []float64{1, 1, 1}})
		// json cannot encode the NaN samples nor the NaN latency delta derived from them
		cb.OnHop(hop.Record{Number: 2, Address: "192.0.2.2", Latencies: []float64{math.NaN(), math.NaN(), math.NaN()}})
		cb.OnComplete()
	})

	resp, err := http.Get(srv.URL + "/v1/trace?target=example.com")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var hops []int
	var completed bool
	for _, ev := range readEvents(t, resp.Body) {
		switch ev.Type {
		case session.EventHop:
			hops = append(hops, ev.Hop.Number)
		case session.EventComplete:
			completed = true
		}
	}
	assert.Equal(t, []int{1}, hops)
	assert.True(t, completed, "stream should continue after an event that cannot be encoded")
}

func TestHandleTrace_InvalidTarget(t *testing.T) {
	_, srv := newTestPathscope(t, simpleTrace)

	for _, target := range []string{"", "-n", "example.com;id"} {
		resp, err := http.Get(srv.URL + "/v1/trace?target=" + target)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestHandleIntel(t *testing.T) {
	p, srv := newTestPathscope(t, simpleTrace)

	tests := []struct {
		name     string
		address  string
		want     int
		wantBody string
	}{
		{
			name:     "ipv4",
			address:  "192.0.2.7",
			want:     http.StatusOK,
			wantBody: `{"address":"192.0.2.7","hostname":"gw.example.net","organization":"Example","countryCode":"DE","asn":"AS64500","addressRange":null}`,
		},
		{name: "hostname", address: "example.com", want: http.StatusNotFound},
		{name: "garbage", address: "1.2.3.4.5", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/v1/intel/" + tt.address)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.wantBody != "" {
				b, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.JSONEq(t, tt.wantBody, string(b))
			}
		})
	}
	assert.Equal(t, 1, p.core.Gatherer.CacheLen())
}

func TestHandleClearCache(t *testing.T) {
	p, srv := newTestPathscope(t, simpleTrace)
	_, ok := p.core.Gatherer.Gather(t.Context(), "192.0.2.1")
	require.True(t, ok)
	require.Equal(t, 1, p.core.Gatherer.CacheLen())

	req, err := http.NewRequestWithContext(t.Context(), http.MethodDelete, srv.URL+"/v1/intel/cache", http.NoBody)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Zero(t, p.core.Gatherer.CacheLen())
}

func TestHandleOpenAPI(t *testing.T) {
	_, srv := newTestPathscope(t, simpleTrace)

	resp, err := http.Get(srv.URL + "/openapi")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	doc, err := openapi3.NewLoader().LoadFromData(b)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(t.Context()))

	assert.Equal(t, "v0.0.1", doc.Info.Version)
	assert.NotNil(t, doc.Paths.Value(pathTrace))
	assert.NotNil(t, doc.Paths.Value(pathIntel))
	assert.Contains(t, doc.Components.Schemas, "Event")

	yamlResp, err := http.Get(srv.URL + "/openapi?format=yaml")
	require.NoError(t, err)
	_ = yamlResp.Body.Close()
	assert.Equal(t, "application/yaml", yamlResp.Header.Get("Content-Type"))
}

func TestHandleHealthAndMetrics(t *testing.T) {
	_, srv := newTestPathscope(t, simpleTrace)

	for _, path := range []string{pathHealth, pathMetrics} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
