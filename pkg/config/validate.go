// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/telekom/pathscope/internal/logger"
)

const (
	maxConcurrentLimit = 64
	maxRetryCount      = 5
	// maxRetryDelay keeps retries meaningful within the bound of a single registry query.
	maxRetryDelay = 2 * time.Second
)

// Validate validates the startup config
func (c *Config) Validate(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)

	if vErr := c.Api.Validate(); vErr != nil {
		log.Error("The api configuration is invalid")
		err = errors.Join(err, vErr)
	}

	if vErr := c.Intel.Validate(ctx); vErr != nil {
		log.Error("The intel configuration is invalid")
		err = errors.Join(err, vErr)
	}

	if c.HasTelemetry() {
		if vErr := c.Telemetry.Validate(ctx); vErr != nil {
			log.Error("The telemetry configuration is invalid")
			err = errors.Join(err, vErr)
		}
	}

	if err != nil {
		return fmt.Errorf("validation of configuration failed: %w", err)
	}
	return nil
}

// Validate validates the intel configuration
func (c *IntelConfig) Validate(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)

	if c.Nameserver != "" {
		if host, port, sErr := net.SplitHostPort(c.Nameserver); sErr != nil || host == "" || port == "" {
			log.Error("The intel nameserver must be a host:port", "nameserver", c.Nameserver)
			err = errors.Join(err, ErrInvalidNameserver)
		}
	}

	if c.MaxConcurrent < 1 || c.MaxConcurrent > maxConcurrentLimit {
		log.Error("The intel max concurrent lookups should be between 1 and 64", "maxConcurrent", c.MaxConcurrent)
		err = errors.Join(err, ErrInvalidMaxConcurrent)
	}

	if c.Retry.Count < 0 || c.Retry.Count > maxRetryCount {
		log.Error("The amount of intel retries should be between 0 and 5", "retryCount", c.Retry.Count)
		err = errors.Join(err, ErrInvalidRetryCount)
	}

	if c.Retry.Delay < 0 || c.Retry.Delay > maxRetryDelay {
		log.Error("The intel retry delay should be between 0 and 2s", "retryDelay", c.Retry.Delay)
		err = errors.Join(err, ErrInvalidRetryDelay)
	}

	return err
}
