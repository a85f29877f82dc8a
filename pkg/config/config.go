// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"net"

	"github.com/telekom/pathscope/internal/helper"
	"github.com/telekom/pathscope/pkg/api"
	"github.com/telekom/pathscope/pkg/metrics"
	"github.com/telekom/pathscope/pkg/session"
)

// portEnv is the platform convention for the port to listen on. It is only
// consulted when no api address is configured.
const portEnv = "PORT"

type Config struct {
	// Api is the configuration for the api server
	Api api.Config `yaml:"api" mapstructure:"api"`
	// Intel is the configuration for the address intelligence lookups
	Intel IntelConfig `yaml:"intel" mapstructure:"intel"`
	// Telemetry is the configuration for the telemetry
	Telemetry metrics.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// IntelConfig is the configuration for the intelligence lookups
type IntelConfig struct {
	// Nameserver is an optional host:port queried for reverse lookups
	// instead of the system resolver
	Nameserver string `yaml:"nameserver" mapstructure:"nameserver"`
	// MaxConcurrent is the number of concurrent lookups per trace
	MaxConcurrent int `yaml:"maxConcurrent" mapstructure:"maxConcurrent"`
	// Retry configures how often a failed registry connection is retried
	Retry helper.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// ApplyDefaults fills unset values with their defaults.
// getenv is used to look up the PORT fallback of the api address.
func (c *Config) ApplyDefaults(getenv func(string) string) {
	if c.Api.ListeningAddress == "" {
		c.Api.ListeningAddress = api.DefaultAddress
		if port := getenv(portEnv); port != "" {
			c.Api.ListeningAddress = net.JoinHostPort("", port)
		}
	}
	if c.Intel.MaxConcurrent == 0 {
		c.Intel.MaxConcurrent = session.DefaultMaxConcurrentIntel
	}
	if c.Telemetry.Exporter == "" {
		c.Telemetry.Exporter = metrics.NOOP
	}
}

// HasTelemetry returns true if the config has telemetry enabled
func (c *Config) HasTelemetry() bool {
	return c.Telemetry.Enabled
}

// HasNameserver returns true if reverse lookups use a dedicated name server
func (c *Config) HasNameserver() bool {
	return c.Intel.Nameserver != ""
}
