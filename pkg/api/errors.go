// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
)

var (
	// ErrServerStop is returned when the api server stopped unexpectedly
	ErrServerStop = errors.New("api server closed unexpectedly")
	// ErrInvalidAddress is returned when the listening address is not a valid host:port
	ErrInvalidAddress = errors.New("invalid api listening address")
	// ErrInvalidTLSConfig is returned when tls is enabled without certificate and key
	ErrInvalidTLSConfig = errors.New("tls requires a certificate and a key path")
	// ErrUnsupportedMethod is returned when a route uses an unsupported http method
	ErrUnsupportedMethod = errors.New("unsupported http method")
)

type ErrCreateOpenapiSchema struct {
	name string
	err  error
}

func (e ErrCreateOpenapiSchema) Error() string {
	return fmt.Sprintf("failed to get schema for %s: %v", e.name, e.err)
}

func (e ErrCreateOpenapiSchema) Unwrap() error {
	return e.err
}
