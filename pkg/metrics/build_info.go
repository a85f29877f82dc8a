// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	buildInfoMetricName = "pathscope_build_info"
	buildInfoHelp       = "Build and platform information of this pathscope instance. Always 1."
)

// RegisterBuildInfo registers the pathscope_build_info info-style metric on the given registry.
// It sets the gauge to 1 with labels version, probe and os.
func RegisterBuildInfo(registry *prometheus.Registry, version, probe, goos string) error {
	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: buildInfoMetricName,
			Help: buildInfoHelp,
		},
		[]string{"version", "probe", "os"},
	)
	info.WithLabelValues(version, probe, goos).Set(1)
	return registry.Register(info)
}
