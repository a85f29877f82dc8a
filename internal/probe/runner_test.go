// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/pathscope/internal/hop"
)

const helperEnv = "PATHSCOPE_WANT_HELPER_PROCESS"

// TestHelperProcess is not a real test. It is re-executed by the tests below
// as a stand-in for the probe binary.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}
	defer os.Exit(0)

	switch os.Getenv("PATHSCOPE_HELPER_MODE") {
	case "trace":
		// Lines arrive split across writes; the last one has no terminator.
		fmt.Fprint(os.Stdout, "traceroute to 203.0.113.9 (203.0.113.9), 30 hops max\n 1  10.0.0.1  1.0 ms")
		time.Sleep(20 * time.Millisecond)
		fmt.Fprint(os.Stdout, "  1.1 ms  1.2 ms\r\n\n 2  * *")
		time.Sleep(20 * time.Millisecond)
		fmt.Fprint(os.Stdout, " *\n 3  203.0.113.9  3.0 ms  * 3.2 ms")
	case "hang":
		time.Sleep(time.Hour)
	case "fail":
		fmt.Fprint(os.Stderr, "traceroute: unknown host nowhere.invalid\n")
		os.Exit(2)
	case "output-then-hang":
		fmt.Fprint(os.Stdout, " 1  10.0.0.1  1.0 ms  1.1 ms  1.2 ms\n")
		time.Sleep(time.Hour)
	}
}

func helperRunner(t *testing.T, mode string) *Runner {
	t.Helper()
	r := NewRunner(CommandFor("linux"))
	r.newCmd = func(name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.Command(os.Args[0], cs...) // #nosec G204 // test binary re-exec
		cmd.Env = append(os.Environ(), helperEnv+"=1", "PATHSCOPE_HELPER_MODE="+mode)
		return cmd
	}
	return r
}

// recorder collects the callbacks of one run.
type recorder struct {
	mu        sync.Mutex
	lines     []string
	hops      []hop.Record
	errs      []error
	completes int
}

func (rc *recorder) callbacks() Callbacks {
	return Callbacks{
		OnRawLine: func(line string) {
			rc.mu.Lock()
			defer rc.mu.Unlock()
			rc.lines = append(rc.lines, line)
		},
		OnHop: func(rec hop.Record) {
			rc.mu.Lock()
			defer rc.mu.Unlock()
			rc.hops = append(rc.hops, rec)
		},
		OnError: func(err error) {
			rc.mu.Lock()
			defer rc.mu.Unlock()
			rc.errs = append(rc.errs, err)
		},
		OnComplete: func() {
			rc.mu.Lock()
			defer rc.mu.Unlock()
			rc.completes++
		},
	}
}

func waitDone(t *testing.T, run *Run) {
	t.Helper()
	select {
	case <-run.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("run did not complete")
	}
}

func TestRunner_Start_StreamsHops(t *testing.T) {
	r := helperRunner(t, "trace")
	rc := &recorder{}

	run := r.Start(t.Context(), "203.0.113.9", rc.callbacks())
	waitDone(t, run)

	assert.Equal(t, []string{
		"traceroute to 203.0.113.9 (203.0.113.9), 30 hops max",
		" 1  10.0.0.1  1.0 ms  1.1 ms  1.2 ms",
		" 2  * * *",
		" 3  203.0.113.9  3.0 ms  * 3.2 ms",
	}, rc.lines)
	require.Len(t, rc.hops, 3)
	assert.Equal(t, hop.Record{Number: 1, Address: "10.0.0.1", Latencies: []float64{1.0, 1.1, 1.2}}, rc.hops[0])
	assert.True(t, rc.hops[1].TimedOut)
	assert.True(t, rc.hops[2].PartialLoss)
	assert.Empty(t, rc.errs)
	assert.Equal(t, 1, rc.completes)
	assert.Equal(t, StateCompleted, run.State())
}

func TestRunner_Start_Timeout(t *testing.T) {
	r := helperRunner(t, "output-then-hang")
	r.timeout = 300 * time.Millisecond
	rc := &recorder{}

	run := r.Start(t.Context(), "203.0.113.9", rc.callbacks())
	waitDone(t, run)
	// Give a late exit of the killed process the chance to misbehave.
	time.Sleep(100 * time.Millisecond)

	rc.mu.Lock()
	defer rc.mu.Unlock()
	require.Len(t, rc.errs, 1)
	assert.ErrorAs(t, rc.errs[0], &ErrProbeTimeout{})
	assert.Equal(t, 1, rc.completes)
	assert.Len(t, rc.hops, 1)
}

func TestRunner_Start_ProcessFailure(t *testing.T) {
	r := helperRunner(t, "fail")
	rc := &recorder{}

	run := r.Start(t.Context(), "nowhere.invalid", rc.callbacks())
	waitDone(t, run)

	require.Len(t, rc.errs, 1)
	var failed ErrProbeFailed
	require.ErrorAs(t, rc.errs[0], &failed)
	assert.Equal(t, 2, failed.ExitCode)
	assert.Contains(t, failed.Stderr, "unknown host")
	assert.Equal(t, 1, rc.completes)
}

func TestRunner_Start_MissingExecutable(t *testing.T) {
	r := NewRunner(Command{
		Name:        "pathscope-no-such-probe",
		Dialect:     hop.DialectUnix,
		Remediation: "install it",
	})
	rc := &recorder{}

	run := r.Start(t.Context(), "203.0.113.9", rc.callbacks())
	waitDone(t, run)

	require.Len(t, rc.errs, 1)
	var notFound ErrProbeNotFound
	require.ErrorAs(t, rc.errs[0], &notFound)
	assert.Equal(t, "pathscope-no-such-probe", notFound.Command)
	assert.Contains(t, rc.errs[0].Error(), "install it")
	assert.Equal(t, 1, rc.completes)
}

func TestRunner_Start_RejectsOptionLikeTarget(t *testing.T) {
	r := helperRunner(t, "trace")
	rc := &recorder{}

	run := r.Start(t.Context(), "-f", rc.callbacks())
	waitDone(t, run)

	require.Len(t, rc.errs, 1)
	assert.ErrorIs(t, rc.errs[0], ErrInvalidTarget)
	assert.Empty(t, rc.lines)
	assert.Equal(t, 1, rc.completes)
}

func TestRun_Cancel(t *testing.T) {
	r := helperRunner(t, "hang")
	r.timeout = 500 * time.Millisecond
	rc := &recorder{}

	run := r.Start(t.Context(), "203.0.113.9", rc.callbacks())
	run.Cancel()
	run.Cancel()
	waitDone(t, run)

	// The timeout must not fire after a cancellation.
	time.Sleep(700 * time.Millisecond)

	rc.mu.Lock()
	defer rc.mu.Unlock()
	assert.Empty(t, rc.errs)
	assert.Empty(t, rc.hops)
	assert.Equal(t, 1, rc.completes)
	assert.Equal(t, StateCompleted, run.State())
}

func TestRun_CancelThroughContext(t *testing.T) {
	r := helperRunner(t, "hang")
	rc := &recorder{}
	ctx, cancel := context.WithCancel(t.Context())

	run := r.Start(ctx, "203.0.113.9", rc.callbacks())
	cancel()
	waitDone(t, run)

	assert.Empty(t, rc.errs)
	assert.Equal(t, 1, rc.completes)
}

func TestRun_CancelAfterCompletion(t *testing.T) {
	r := helperRunner(t, "trace")
	rc := &recorder{}

	run := r.Start(t.Context(), "203.0.113.9", rc.callbacks())
	waitDone(t, run)
	run.Cancel()

	assert.Equal(t, StateCompleted, run.State())
	assert.Equal(t, 1, rc.completes)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		cancelled bool
		want      string
	}{
		{"completed", nil, false, "completed"},
		{"cancelled", nil, true, "cancelled"},
		{"timeout wins over cancel", ErrProbeTimeout{After: time.Second}, true, "timeout"},
		{"not found", ErrProbeNotFound{Command: "traceroute"}, false, "not_found"},
		{"failed", ErrProbeFailed{ExitCode: 1}, false, "failed"},
		{"wrapped generic", fmt.Errorf("wrap: %w", ErrInvalidTarget), false, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outcome(tt.err, tt.cancelled))
		})
	}
}
