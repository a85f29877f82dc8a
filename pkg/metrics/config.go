// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/telekom/pathscope/internal/logger"
)

var (
	// ErrMissingURL is returned if an exporting collector has no url.
	ErrMissingURL = errors.New("the collector url is required")
	// ErrInvalidSampleRatio is returned if the sample ratio is outside of [0, 1].
	ErrInvalidSampleRatio = errors.New("the sample ratio must be between 0 and 1")
)

// Config configures the export of trace sessions, intel lookups and
// registry queries as OpenTelemetry spans.
type Config struct {
	// Enabled turns span export on
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Exporter is the exporter the spans are sent with
	Exporter Exporter `yaml:"exporter" mapstructure:"exporter"`
	// Url is the collector endpoint of the grpc and http exporters
	Url string `yaml:"url" mapstructure:"url"`
	// Token is sent as bearer token to the collector
	Token string `yaml:"token" mapstructure:"token"`
	// SampleRatio is the fraction of traces recorded when the caller did
	// not decide already. Zero records everything.
	SampleRatio float64 `yaml:"sampleRatio" mapstructure:"sampleRatio"`
	// TLS configures the connection to the collector
	TLS TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// TLSConfig configures the connection to the collector.
type TLSConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// CertPath is an additional CA certificate, for collectors behind a private CA.
	CertPath string `yaml:"certPath" mapstructure:"certPath"`
}

// Validate checks the exporter, its url and the sample ratio
func (c *Config) Validate(ctx context.Context) error {
	log := logger.FromContext(ctx)

	var errs []error
	if err := c.Exporter.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Exporter.IsExporting() && c.Url == "" {
		errs = append(errs, fmt.Errorf("%w for exporter %q", ErrMissingURL, c.Exporter))
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("%w, got %v", ErrInvalidSampleRatio, c.SampleRatio))
	}

	if err := errors.Join(errs...); err != nil {
		log.ErrorContext(ctx, "Invalid telemetry configuration", "error", err)
		return err
	}
	return nil
}

// sampleRatio returns the effective ratio, where zero means all traces.
func (c *Config) sampleRatio() float64 {
	if c.SampleRatio <= 0 {
		return 1
	}
	return c.SampleRatio
}
