// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/pathscope/internal/hop"
	"github.com/telekom/pathscope/internal/logger"
)

const (
	// Timeout is the hard wall-clock limit of one probe run.
	Timeout = 60 * time.Second
	// maxStderr is the amount of stderr kept for error reports.
	maxStderr = 4 << 10
	// chunkSize is the read size for the probe's stdout.
	chunkSize = 4 << 10
)

// State is the lifecycle state of a [Run].
type State int32

const (
	// StateRunning is a run whose probe process is still producing output.
	StateRunning State = iota
	// StateCancelling is a run that was asked to stop and waits for its process to exit.
	StateCancelling
	// StateCompleted is a run that finished. It never changes state again.
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCancelling:
		return "cancelling"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Callbacks receive the output of a probe run.
// All callbacks of one run are invoked sequentially, never concurrently.
// Nil callbacks are ignored.
type Callbacks struct {
	// OnRawLine is called for every non-empty output line, before parsing.
	OnRawLine func(line string)
	// OnHop is called for every line that parses to a hop.
	OnHop func(rec hop.Record)
	// OnError is called for process-level failures.
	OnError func(err error)
	// OnComplete is called exactly once when the run is over.
	OnComplete func()
}

// Runner starts probe processes.
type Runner struct {
	command Command
	parser  hop.Parser
	timeout time.Duration
	newCmd  func(name string, args ...string) *exec.Cmd
	metrics metrics
}

// NewRunner returns a runner that invokes the given command.
func NewRunner(cmd Command) *Runner {
	return &Runner{
		command: cmd,
		parser:  hop.NewParser(cmd.Dialect),
		timeout: Timeout,
		newCmd:  exec.Command,
		metrics: newMetrics(),
	}
}

// Command returns the probe command of the runner.
func (r *Runner) Command() Command {
	return r.command
}

// Collectors returns the prometheus collectors of the runner.
func (r *Runner) Collectors() []prometheus.Collector {
	return r.metrics.List()
}

// Start launches one probe process against target.
// The target must already be validated; it is passed to the probe as a single argument.
// Start never blocks on the probe: failures, including a missing executable,
// are reported through cb.OnError followed by cb.OnComplete.
// Cancelling ctx cancels the run.
func (r *Runner) Start(ctx context.Context, target string, cb Callbacks) *Run {
	log := logger.FromContext(ctx).With("probe", r.command.Name, "target", target)
	run := &Run{
		cb:      cb,
		log:     log,
		started: time.Now(),
		metrics: r.metrics,
		done:    make(chan struct{}),
	}

	if target == "" || strings.HasPrefix(target, "-") {
		run.finish(fmt.Errorf("%w: %q", ErrInvalidTarget, target))
		return run
	}

	cmd := r.newCmd(r.command.Name, r.command.argv(target)...)
	setProcessGroup(cmd)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		run.finish(fmt.Errorf("failed to open probe output: %w", err))
		return run
	}
	stderr := &cappedBuffer{max: maxStderr}
	cmd.Stderr = stderr

	log.DebugContext(ctx, "Starting probe", "args", cmd.Args[1:])
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			log.ErrorContext(ctx, "Probe executable not found", "error", err)
			run.finish(ErrProbeNotFound{Command: r.command.Name, Remediation: r.command.Remediation})
			return run
		}
		log.ErrorContext(ctx, "Failed to start probe", "error", err)
		run.finish(fmt.Errorf("failed to start %s: %w", r.command.Name, err))
		return run
	}

	run.cmd = cmd
	run.timeout = r.timeout
	run.mu.Lock()
	run.timer = time.AfterFunc(r.timeout, run.expire)
	run.stopCtx = context.AfterFunc(ctx, run.Cancel)
	run.mu.Unlock()

	go func() {
		run.consume(stdout, r.parser)
		run.finish(run.exitError(cmd.Wait(), stderr))
	}()
	return run
}

// Run is a single probe invocation.
type Run struct {
	cb      Callbacks
	log     *slog.Logger
	metrics metrics
	started time.Time
	timeout time.Duration

	state atomic.Int32
	// mu serialises callbacks and guards completed, timer and stopCtx.
	mu        sync.Mutex
	completed bool
	timer     *time.Timer
	stopCtx   func() bool

	cmd  *exec.Cmd
	done chan struct{}
}

// State returns the current lifecycle state.
func (r *Run) State() State {
	return State(r.state.Load())
}

// Cancel terminates the probe immediately.
// The run still completes exactly once, without reporting an error for the
// termination. Cancel is safe to call multiple times and after completion.
func (r *Run) Cancel() {
	if !r.state.CompareAndSwap(int32(StateRunning), int32(StateCancelling)) {
		return
	}
	r.log.Debug("Cancelling probe")
	r.kill()
}

// Done returns a channel that is closed once the run completed.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run completed.
func (r *Run) Wait() {
	<-r.done
}

// expire is called by the timeout timer.
func (r *Run) expire() {
	if !r.state.CompareAndSwap(int32(StateRunning), int32(StateCancelling)) {
		return
	}
	r.log.Debug("Probe timed out, terminating", "timeout", r.timeout)
	r.kill()
	r.finish(ErrProbeTimeout{After: r.timeout})
}

func (r *Run) kill() {
	if r.cmd == nil || r.cmd.Process == nil {
		return
	}
	if err := killProcess(r.cmd); err != nil {
		r.log.Debug("Failed to kill probe", "error", err)
	}
}

// consume reads the probe output until end of stream.
func (r *Run) consume(stdout io.Reader, parser hop.Parser) {
	var (
		lines lineBuffer
		chunk = make([]byte, chunkSize)
	)
	for {
		n, err := stdout.Read(chunk)
		if n > 0 {
			for _, line := range lines.feed(chunk[:n]) {
				r.deliver(line, parser)
			}
		}
		if err != nil {
			break
		}
	}
	if line, ok := lines.flush(); ok {
		r.deliver(line, parser)
	}
}

func (r *Run) deliver(line string, parser hop.Parser) {
	if strings.TrimSpace(line) == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.completed {
		return
	}
	if r.cb.OnRawLine != nil {
		r.cb.OnRawLine(line)
	}
	if rec, ok := parser.ParseLine(line); ok && r.cb.OnHop != nil {
		r.cb.OnHop(rec)
	}
}

// exitError maps the result of waiting for the process to the error reported
// to the callbacks. Terminations we caused ourselves are not errors.
func (r *Run) exitError(err error, stderr *cappedBuffer) error {
	if r.State() != StateRunning {
		return nil
	}
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return ErrProbeFailed{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
	}
	return fmt.Errorf("probe failed: %w", err)
}

// finish completes the run once. Later calls are no-ops.
func (r *Run) finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.completed {
		return
	}
	r.completed = true
	cancelled := r.state.Swap(int32(StateCompleted)) == int32(StateCancelling)

	if r.timer != nil {
		r.timer.Stop()
	}
	if r.stopCtx != nil {
		r.stopCtx()
	}

	r.metrics.observe(outcome(err, cancelled), time.Since(r.started))
	if err != nil && r.cb.OnError != nil {
		r.cb.OnError(err)
	}
	if r.cb.OnComplete != nil {
		r.cb.OnComplete()
	}
	close(r.done)
}

// outcome returns the metric label for the way a run ended.
func outcome(err error, cancelled bool) string {
	var (
		notFound ErrProbeNotFound
		timeout  ErrProbeTimeout
		failed   ErrProbeFailed
	)
	switch {
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &timeout):
		return "timeout"
	case errors.As(err, &failed):
		return "failed"
	case err != nil:
		return "error"
	case cancelled:
		return "cancelled"
	default:
		return "completed"
	}
}
