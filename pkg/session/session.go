// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/telekom/pathscope/internal/hop"
	"github.com/telekom/pathscope/internal/intel"
	"github.com/telekom/pathscope/internal/logger"
	"github.com/telekom/pathscope/internal/probe"
)

const (
	// DefaultMaxConcurrentIntel is the default number of concurrent
	// intelligence lookups per trace.
	DefaultMaxConcurrentIntel = 8
	// eventBuffer is the capacity of the event channel of a trace.
	eventBuffer = 32
)

// errRejected is returned through the single flight group for addresses
// the gatherer refused to look up.
var errRejected = errors.New("address rejected")

var _ Runner = (*probeRunner)(nil)

// Run is a started probe run.
type Run interface {
	// Cancel stops the run. It is safe to call more than once.
	Cancel()
}

// Runner starts probe runs.
type Runner interface {
	// Start launches a probe against target and reports its output through cb.
	Start(ctx context.Context, target string, cb probe.Callbacks) Run
}

// Gatherer gathers intelligence about an address.
type Gatherer interface {
	// Gather returns the intelligence for address, or false if the address was rejected.
	Gather(ctx context.Context, address string) (intel.Record, bool)
}

// probeRunner adapts a [probe.Runner] to [Runner].
type probeRunner struct {
	runner *probe.Runner
}

// NewProbeRunner returns a [Runner] backed by r.
func NewProbeRunner(r *probe.Runner) Runner {
	return probeRunner{runner: r}
}

func (p probeRunner) Start(ctx context.Context, target string, cb probe.Callbacks) Run {
	return p.runner.Start(ctx, target, cb)
}

// Tracer starts trace sessions. A Tracer is safe for concurrent use; every
// trace has its own classification state.
type Tracer struct {
	runner        Runner
	gatherer      Gatherer
	maxConcurrent int64
	// flight coalesces concurrent lookups of the same address across traces.
	flight  singleflight.Group
	metrics metrics
}

// NewTracer creates a tracer that runs probes with runner and enriches hop
// addresses with gatherer, at most maxConcurrent lookups at a time per trace.
func NewTracer(runner Runner, gatherer Gatherer, maxConcurrent int) *Tracer {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentIntel
	}
	return &Tracer{
		runner:        runner,
		gatherer:      gatherer,
		maxConcurrent: int64(maxConcurrent),
		metrics:       newMetrics(),
	}
}

// Collectors returns the metric collectors of the tracer.
func (tr *Tracer) Collectors() []prometheus.Collector {
	return tr.metrics.List()
}

// Start begins a trace to target. The returned trace delivers its events
// until the probe completed and all intelligence lookups finished, then
// closes the event channel. When ctx is done the probe is cancelled and
// pending events are dropped.
//
// The consumer must either drain [Trace.Events] or cancel ctx.
func (tr *Tracer) Start(ctx context.Context, target string) *Trace {
	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer("session.tracer")
	ctx, span := tracer.Start(ctx, "trace.session", trace.WithAttributes(
		attribute.String("trace.target", target),
	))
	ctx = logger.IntoContext(ctx, logger.FromContext(ctx).With("target", target))

	t := &Trace{
		tracer:   tr,
		target:   target,
		ctx:      ctx,
		span:     span,
		events:   make(chan Event, eventBuffer),
		sem:      semaphore.NewWeighted(tr.maxConcurrent),
		cancelCh: make(chan struct{}),
	}
	tr.metrics.active.Inc()

	logger.FromContext(ctx).InfoContext(ctx, "Starting trace")
	t.run = tr.runner.Start(ctx, target, probe.Callbacks{
		OnRawLine:  t.onRawLine,
		OnHop:      t.onHop,
		OnError:    t.onError,
		OnComplete: t.onComplete,
	})
	return t
}

// gather looks up address once for all traces asking at the same time.
func (tr *Tracer) gather(ctx context.Context, address string) (intel.Record, bool) {
	v, err, _ := tr.flight.Do(address, func() (any, error) {
		rec, ok := tr.gatherer.Gather(ctx, address)
		if !ok {
			return nil, errRejected
		}
		return rec, nil
	})
	if err != nil {
		return intel.Record{}, false
	}
	return v.(intel.Record), true
}

// Trace is a running trace session.
type Trace struct {
	tracer *Tracer
	target string
	ctx    context.Context
	span   trace.Span
	run    Run

	// classifier is only used from probe callbacks, which never run concurrently.
	classifier hop.Classifier

	sem      *semaphore.Weighted
	lookups  sync.WaitGroup
	cancel   sync.Once
	cancelCh chan struct{}

	// mu guards closing events against concurrent sends.
	mu     sync.RWMutex
	closed bool
	events chan Event

	failed atomic.Bool
}

// Target returns the traced target.
func (t *Trace) Target() string {
	return t.target
}

// Events returns the event stream of the trace. It is closed after the last event.
func (t *Trace) Events() <-chan Event {
	return t.events
}

// Cancel stops the probe. Intelligence arriving afterwards is dropped.
func (t *Trace) Cancel() {
	t.cancel.Do(func() {
		close(t.cancelCh)
		logger.FromContext(t.ctx).InfoContext(t.ctx, "Cancelling trace")
		t.run.Cancel()
	})
}

func (t *Trace) cancelled() bool {
	select {
	case <-t.cancelCh:
		return true
	default:
		return false
	}
}

func (t *Trace) onRawLine(line string) {
	t.emit(rawEvent(line))
}

func (t *Trace) onHop(rec hop.Record) {
	c := t.classifier.Next(rec)
	t.tracer.metrics.hops.WithLabelValues(string(c.Category)).Inc()
	t.emit(hopEvent(c))

	if !rec.HasAddress() {
		return
	}
	t.lookups.Add(1)
	go t.enrich(rec.Number, rec.Address)
}

// enrich gathers intelligence for one hop address. The lookup outlives
// cancellation of the trace; its result is dropped if the trace moved on.
func (t *Trace) enrich(number int, address string) {
	defer t.lookups.Done()
	ctx := context.WithoutCancel(t.ctx)

	if err := t.sem.Acquire(ctx, 1); err != nil {
		return
	}
	defer t.sem.Release(1)
	if t.cancelled() {
		return
	}

	rec, ok := t.tracer.gather(ctx, address)
	if !ok || t.cancelled() {
		return
	}
	t.emit(intelEvent(number, rec))
}

func (t *Trace) onError(err error) {
	t.failed.Store(true)
	t.span.SetStatus(codes.Error, err.Error())
	t.span.RecordError(err)
	logger.FromContext(t.ctx).WarnContext(t.ctx, "Trace failed", "error", err)
	t.emit(errorEvent(err))
}

func (t *Trace) onComplete() {
	t.emit(completeEvent())

	idle := make(chan struct{})
	go func() {
		t.lookups.Wait()
		close(idle)
	}()
	go func() {
		select {
		case <-idle:
		case <-t.cancelCh:
		case <-t.ctx.Done():
		}
		t.close()
	}()
}

// emit delivers ev unless the trace is closed or its consumer went away.
// After cancellation ev is only delivered if it fits into the buffer.
func (t *Trace) emit(ev Event) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}
	select {
	case t.events <- ev:
		return
	default:
	}
	select {
	case t.events <- ev:
	case <-t.cancelCh:
	case <-t.ctx.Done():
	}
}

func (t *Trace) close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	close(t.events)

	outcome := "completed"
	switch {
	case t.cancelled() || t.ctx.Err() != nil:
		outcome = "cancelled"
	case t.failed.Load():
		outcome = "failed"
	}
	t.tracer.metrics.active.Dec()
	t.tracer.metrics.traces.WithLabelValues(outcome).Inc()
	t.span.SetAttributes(attribute.String("trace.outcome", outcome))
	t.span.End()
	logger.FromContext(t.ctx).InfoContext(t.ctx, "Trace finished", "outcome", outcome)
}
