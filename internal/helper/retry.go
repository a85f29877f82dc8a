// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"context"
	"fmt"
	"time"

	"github.com/telekom/pathscope/internal/logger"
)

// maxBackoff caps the wait between two attempts.
const maxBackoff = 30 * time.Second

// RetryConfig configures how often and how fast an effector is retried.
type RetryConfig struct {
	// Count is the number of retries after the first attempt.
	Count int `json:"count" yaml:"count" mapstructure:"count"`
	// Delay is the initial delay between attempts. It doubles with every retry.
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// Attempts returns the total number of calls the config allows.
func (rc RetryConfig) Attempts() int {
	return max(rc.Count, 0) + 1
}

// Effector is an operation that may fail transiently.
type Effector func(context.Context) error

// Retry wraps effector so that it is called up to [RetryConfig.Attempts]
// times with an exponential backoff in between. It stops as soon as the
// context is done and returns the last error of the effector.
func Retry(effector Effector, rc RetryConfig) Effector {
	return func(ctx context.Context) error {
		log := logger.FromContext(ctx)
		attempts := rc.Attempts()

		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for attempt := 1; ; attempt++ {
			err := effector(ctx)
			if err == nil {
				return nil
			}
			if attempt >= attempts || ctx.Err() != nil {
				if attempts > 1 {
					return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
				}
				return err
			}

			wait := backoff(rc.Delay, attempt)
			log.DebugContext(ctx, "Attempt failed, retrying", "attempt", attempt, "wait", wait, "error", err)

			if timer == nil {
				timer = time.NewTimer(wait)
			} else {
				timer.Reset(wait)
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("aborted after %d attempts: %w", attempt, err)
			case <-timer.C:
			}
		}
	}
}

// backoff returns the wait after the given failed attempt, starting at
// initial and doubling up to [maxBackoff].
func backoff(initial time.Duration, attempt int) time.Duration {
	if attempt <= 1 || initial <= 0 {
		return max(initial, 0)
	}
	shift := min(attempt-1, 30)
	d := initial << shift
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}
