// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry(t *testing.T) {
	errRefused := errors.New("connection refused")

	tests := []struct {
		name      string
		failures  int
		rc        RetryConfig
		wantCalls int
		wantErr   bool
	}{
		{name: "first dial succeeds", failures: 0, rc: RetryConfig{Count: 2}, wantCalls: 1},
		{name: "dial succeeds after retries", failures: 2, rc: RetryConfig{Count: 2, Delay: time.Millisecond}, wantCalls: 3},
		{name: "retries exhausted", failures: 5, rc: RetryConfig{Count: 1, Delay: time.Millisecond}, wantCalls: 2, wantErr: true},
		{name: "no retries configured", failures: 1, rc: RetryConfig{}, wantCalls: 1, wantErr: true},
		{name: "negative count behaves like zero", failures: 1, rc: RetryConfig{Count: -3}, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			dial := Retry(func(context.Context) error {
				calls++
				if calls <= tt.failures {
					return errRefused
				}
				return nil
			}, tt.rc)

			err := dial(t.Context())
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				assert.ErrorIs(t, err, errRefused)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetry_attemptsInError(t *testing.T) {
	errRefused := errors.New("connection refused")
	dial := Retry(func(context.Context) error { return errRefused }, RetryConfig{Count: 2, Delay: time.Millisecond})

	err := dial(t.Context())
	require.ErrorIs(t, err, errRefused)
	assert.Contains(t, err.Error(), "3 attempts")
}

func TestRetry_stopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	calls := 0
	dial := Retry(func(context.Context) error {
		calls++
		cancel()
		return errors.New("connection refused")
	}, RetryConfig{Count: 5, Delay: time.Hour})

	start := time.Now()
	err := dial(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRetry_cancelDuringWait(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	calls := 0
	dial := Retry(func(context.Context) error {
		calls++
		return errors.New("connection refused")
	}, RetryConfig{Count: 5, Delay: time.Hour})

	err := dial(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aborted after 1 attempts")
	assert.Equal(t, 1, calls)
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		initial time.Duration
		attempt int
		want    time.Duration
	}{
		{initial: time.Second, attempt: 1, want: time.Second},
		{initial: time.Second, attempt: 2, want: 2 * time.Second},
		{initial: time.Second, attempt: 4, want: 8 * time.Second},
		{initial: time.Second, attempt: 10, want: maxBackoff},
		{initial: time.Hour, attempt: 60, want: maxBackoff},
		{initial: 0, attempt: 3, want: 0},
		{initial: -time.Second, attempt: 1, want: 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, backoff(tt.initial, tt.attempt), "backoff(%v, %d)", tt.initial, tt.attempt)
	}
}

func TestRetryConfig_Attempts(t *testing.T) {
	assert.Equal(t, 1, RetryConfig{}.Attempts())
	assert.Equal(t, 4, RetryConfig{Count: 3}.Attempts())
	assert.Equal(t, 1, RetryConfig{Count: -1}.Attempts())
}
