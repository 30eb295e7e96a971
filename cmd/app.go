// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"neonrpc/cli/internal/auth"
	"neonrpc/cli/internal/config"
	"neonrpc/cli/internal/entrypoint"
	"neonrpc/cli/internal/logging"
	"neonrpc/cli/internal/neonapi"
	"neonrpc/cli/internal/operations"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs after flags are parsed.
type app struct {
	cfg config.Config
	log *pterm.Logger
}

var current *app

// loadApp reads config and builds the logger. Called from the root
// PersistentPreRunE so subcommands can rely on current being set.
func loadApp(cmd *cobra.Command) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	current = &app{
		cfg: cfg,
		log: logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr),
	}
	return nil
}

func (a *app) clientFactory() neonapi.Factory {
	return neonapi.NewFactory(
		neonapi.WithBaseURL(a.cfg.API.BaseURL),
		neonapi.WithTimeout(a.cfg.API.Timeout),
		neonapi.WithUserAgent("neonrpc/"+Version),
		neonapi.WithLogger(logging.APILogger(a.log)),
	)
}

func (a *app) registry() *entrypoint.Registry {
	env := operations.Env{
		Credentials: auth.Default(),
		NewClient:   a.clientFactory(),
		PageSize:    a.cfg.API.PageSize,
	}
	return entrypoint.NewRegistry(entrypoint.NewWorker(env), entrypoint.WithLogger(a.log))
}

// sharedSecret resolves the transport secret from the environment or keychain.
func sharedSecret() (string, error) {
	return auth.SharedSecret(os.LookupEnv, auth.OpenKeychain)
}
