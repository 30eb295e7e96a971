// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd implements the neonrpc command line: serving the Neon RPC
// surface over MCP, HTTP and gRPC, one-off calls, and credential management.
package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
	configPath  string
	logLevel    string
)

// errReported marks an error whose explanation was already printed.
var errReported = stderrors.New("reported")

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "neonrpc",
	Short: "RPC façade over the Neon control-plane API",
	Long: `neonrpc exposes a fixed set of Neon operations (projects, branches, schemas
and databases) to callers over MCP stdio, HTTP, WebSocket and gRPC.

The Neon API key is read from NEON_API_KEY or from the OS keychain
(see 'neonrpc login').`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadApp(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("neonrpc %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !stderrors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/neonrpc/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace|debug|info|warn|error")
}
