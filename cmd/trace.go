// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/telekom/pathscope/internal/logger"
	"github.com/telekom/pathscope/pkg/pathscope"
	"github.com/telekom/pathscope/pkg/session"
)

var errTraceFailed = errors.New("trace failed")

// NewCmdTrace creates a new trace command
func NewCmdTrace() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "trace <target>",
		Short: "Trace the route to a target",
		Long: "Runs the route probe against the target and prints every event\n" +
			"(hops, intel, errors and completion) as one JSON object per line.",
		Args:   cobra.ExactArgs(1),
		PreRun: bindFlags,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			if !session.ValidTarget(target) {
				return fmt.Errorf("invalid target %q", target)
			}

			ctx, cancel := newCommandContext(cmd.Context())
			defer cancel()
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			core := pathscope.NewCore(cfg)
			tr := core.Tracer.Start(ctx, target)
			defer tr.Cancel()

			log := logger.FromContext(ctx)
			out := cmd.OutOrStdout()
			var failed error
			for ev := range tr.Events() {
				if ev.Type == session.EventRaw && !raw {
					continue
				}
				if ev.Type == session.EventError {
					failed = fmt.Errorf("%w: %s", errTraceFailed, ev.Error)
				}
				b, err := json.Marshal(ev)
				if err != nil {
					log.ErrorContext(ctx, "Failed to encode event", "type", ev.Type, "error", err)
					continue
				}
				if _, err := fmt.Fprintf(out, "%s\n", b); err != nil {
					return fmt.Errorf("failed to write event: %w", err)
				}
			}
			return failed
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Also print the raw probe output lines")
	registerIntelFlags(cmd.Flags())
	return cmd
}
