// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import "errors"

var (
	// ErrInvalidNameserver is returned when the intel name server is not a valid host:port
	ErrInvalidNameserver = errors.New("invalid intel nameserver")
	// ErrInvalidMaxConcurrent is returned when the intel concurrency is out of range
	ErrInvalidMaxConcurrent = errors.New("invalid intel max concurrent lookups")
	// ErrInvalidRetryCount is returned when the intel retry count is invalid
	ErrInvalidRetryCount = errors.New("invalid intel retry count")
	// ErrInvalidRetryDelay is returned when the intel retry delay is invalid
	ErrInvalidRetryDelay = errors.New("invalid intel retry delay")
)
