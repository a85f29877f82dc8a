// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

// FlagsNameMapping maps the cli flag names to their configuration keys
type FlagsNameMapping struct {
	ApiAddress     string
	ApiTlsEnabled  string
	ApiTlsCertPath string
	ApiTlsKeyPath  string

	IntelNameserver    string
	IntelMaxConcurrent string
	IntelRetryCount    string
	IntelRetryDelay    string

	TelemetryEnabled     string
	TelemetryExporter    string
	TelemetryUrl         string
	TelemetryToken       string
	TelemetrySampleRatio string
}

// Flags returns the flag names used by the cli
func Flags() FlagsNameMapping {
	return FlagsNameMapping{
		ApiAddress:     "apiAddress",
		ApiTlsEnabled:  "apiTlsEnabled",
		ApiTlsCertPath: "apiTlsCertPath",
		ApiTlsKeyPath:  "apiTlsKeyPath",

		IntelNameserver:    "intelNameserver",
		IntelMaxConcurrent: "intelMaxConcurrent",
		IntelRetryCount:    "intelRetryCount",
		IntelRetryDelay:    "intelRetryDelay",

		TelemetryEnabled:     "telemetryEnabled",
		TelemetryExporter:    "telemetryExporter",
		TelemetryUrl:         "telemetryUrl",
		TelemetryToken:       "telemetryToken",
		TelemetrySampleRatio: "telemetrySampleRatio",
	}
}

// Keys maps every flag name to its configuration key
func (f FlagsNameMapping) Keys() map[string]string {
	return map[string]string{
		f.ApiAddress:           "api.address",
		f.ApiTlsEnabled:        "api.tls.enabled",
		f.ApiTlsCertPath:       "api.tls.certPath",
		f.ApiTlsKeyPath:        "api.tls.keyPath",
		f.IntelNameserver:      "intel.nameserver",
		f.IntelMaxConcurrent:   "intel.maxConcurrent",
		f.IntelRetryCount:      "intel.retry.count",
		f.IntelRetryDelay:      "intel.retry.delay",
		f.TelemetryEnabled:     "telemetry.enabled",
		f.TelemetryExporter:    "telemetry.exporter",
		f.TelemetryUrl:         "telemetry.url",
		f.TelemetryToken:       "telemetry.token",
		f.TelemetrySampleRatio: "telemetry.sampleRatio",
	}
}
