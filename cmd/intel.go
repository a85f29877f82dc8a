// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/telekom/pathscope/internal/intel"
	"github.com/telekom/pathscope/pkg/pathscope"
)

const (
	outputYAML = "yaml"
	outputJSON = "json"
)

// NewCmdIntel creates a new intel command
func NewCmdIntel() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:    "intel <address>",
		Short:  "Look up reverse DNS and registry data of an address",
		Args:   cobra.ExactArgs(1),
		PreRun: bindFlags,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != outputYAML && output != outputJSON {
				return fmt.Errorf("unsupported output format %q", output)
			}

			ctx, cancel := newCommandContext(cmd.Context())
			defer cancel()

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			rec, ok := pathscope.NewCore(cfg).Gatherer.Gather(ctx, args[0])
			if !ok {
				return fmt.Errorf("invalid address %q", args[0])
			}
			return writeRecord(cmd.OutOrStdout(), rec, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputYAML, "Output format (yaml, json)")
	registerIntelFlags(cmd.Flags())
	return cmd
}

func writeRecord(w io.Writer, rec intel.Record, format string) error {
	if format == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return err
	}
	return enc.Close()
}
