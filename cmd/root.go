// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/telekom/pathscope/internal/logger"
	"github.com/telekom/pathscope/pkg/config"
)

// NewCmdRoot creates a new root command
func NewCmdRoot(version string) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "pathscope",
		Short: "Pathscope, route tracing with address intelligence",
		Long: "Pathscope traces the route to a target, classifies every hop\n" +
			"and enriches the hop addresses with reverse DNS and registry data.",
		Version: version,
	}

	cobra.OnInitialize(func() {
		initConfig(cfgFile)
	})

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.pathscope.yaml)")

	return rootCmd
}

// Execute adds all child commands to the root command
// and executes the cmd tree
func Execute(version string) {
	cmd := BuildCmd(version)

	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func BuildCmd(version string) *cobra.Command {
	cmd := NewCmdRoot(version)
	cmd.AddCommand(NewCmdRun(version))
	cmd.AddCommand(NewCmdTrace())
	cmd.AddCommand(NewCmdIntel())
	return cmd
}

func initConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pathscope" (without an extension)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pathscope")
	}

	viper.SetOptions(viper.ExperimentalBindStruct())
	viper.SetEnvPrefix("pathscope")
	dotreplacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(dotreplacer)
	viper.AutomaticEnv()

	// stdout belongs to the command output
	if err := viper.ReadInConfig(); err == nil {
		_, _ = fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// registerIntelFlags adds the flags configuring the intelligence lookups
func registerIntelFlags(fs *pflag.FlagSet) {
	f := config.Flags()
	fs.String(f.IntelNameserver, "", "intel: host:port of a name server used for reverse lookups instead of the system resolver")
	fs.Int(f.IntelMaxConcurrent, 0, "intel: concurrent lookups per trace (default 8)")
	fs.Int(f.IntelRetryCount, 0, "intel: retries of a failed registry connection")
	fs.Duration(f.IntelRetryDelay, 0, "intel: initial delay between registry connection retries")
}

// bindFlags binds the known flags of the executed command to their
// configuration keys. Commands share keys, so binding happens right
// before a command runs and not when the tree is built.
func bindFlags(cmd *cobra.Command, _ []string) {
	for name, key := range config.Flags().Keys() {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			_ = viper.BindPFlag(key, flag)
		}
	}
}

// loadConfig reads the configuration from viper, applies the defaults and validates it
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyDefaults(os.Getenv)

	if err := cfg.Validate(ctx); err != nil {
		return nil, fmt.Errorf("error while validating the config: %w", err)
	}
	return cfg, nil
}

// newCommandContext returns a context carrying the default logger
func newCommandContext(parent context.Context) (context.Context, context.CancelFunc) {
	return logger.NewContextWithLogger(parent)
}
