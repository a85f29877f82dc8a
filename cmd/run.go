// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/telekom/pathscope/internal/logger"
	"github.com/telekom/pathscope/pkg/config"
	"github.com/telekom/pathscope/pkg/pathscope"
)

// NewCmdRun creates a new run command
func NewCmdRun(version string) *cobra.Command {
	f := config.Flags()

	cmd := &cobra.Command{
		Use:    "run",
		Short:  "Run pathscope",
		Long:   `Serves the trace and intel api`,
		PreRun: bindFlags,
		RunE:   run(version),
	}

	cmd.PersistentFlags().String(f.ApiAddress, "", "api: The address the server is listening on (default :8080, or :$PORT)")
	cmd.PersistentFlags().Bool(f.ApiTlsEnabled, false, "api: Serve the api via https")
	cmd.PersistentFlags().String(f.ApiTlsCertPath, "", "api: The path to the tls certificate")
	cmd.PersistentFlags().String(f.ApiTlsKeyPath, "", "api: The path to the tls key")

	registerIntelFlags(cmd.PersistentFlags())

	cmd.PersistentFlags().Bool(f.TelemetryEnabled, false, "telemetry: Whether to export traces")
	cmd.PersistentFlags().String(f.TelemetryExporter, "", "telemetry: The exporter to use (grpc, http, stdout, noop)")
	cmd.PersistentFlags().String(f.TelemetryUrl, "", "telemetry: The url of the collector")
	cmd.PersistentFlags().String(f.TelemetryToken, "", "telemetry: The bearer token used to authenticate with the collector")
	cmd.PersistentFlags().Float64(f.TelemetrySampleRatio, 0, "telemetry: Fraction of new traces that are recorded (default all)")

	return cmd
}

// run is the entry point to start pathscope
func run(version string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := newCommandContext(cmd.Context())
		defer cancel()
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		log := logger.FromContext(ctx)

		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}

		log.InfoContext(ctx, "Running pathscope", "address", cfg.Api.ListeningAddress, "version", version)
		p := pathscope.New(cfg, version)
		if err := p.Run(ctx); err != nil && !errors.Is(err, pathscope.ErrFinalShutdown) {
			return err
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			log.InfoContext(ctx, "Pathscope stopped")
		}
		return nil
	}
}
