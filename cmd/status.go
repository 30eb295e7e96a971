// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strings"

	"neonrpc/cli/internal/auth"
	"neonrpc/cli/internal/config"
	"neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// statusCmd shows where credentials come from without revealing them.
var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"whoami"},
	Short:   "Show the active credential source and settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		var lines []string

		source, key, err := auth.Default().Resolve(cmd.Context())
		switch {
		case errors.Is(err, errors.CredentialMissing):
			lines = append(lines, "API key:       "+pterm.Red("not configured"))
		case err != nil:
			return err
		default:
			lines = append(lines, "API key:       "+logging.MaskKey(key)+pterm.Gray(" ("+source+")"))
		}

		switch secret, err := sharedSecret(); {
		case err != nil:
			lines = append(lines, "Shared secret: "+pterm.Red("unreadable (serve refuses network listeners without --insecure)"))
		case secret == "":
			lines = append(lines, "Shared secret: "+pterm.Yellow("none (network listeners are open)"))
		default:
			lines = append(lines, "Shared secret: configured")
		}

		cfgPath := configPath
		if cfgPath == "" {
			if p, err := config.Path(); err == nil {
				cfgPath = p
			}
		}
		lines = append(lines,
			"Config:        "+cfgPath,
			"API base URL:  "+current.cfg.API.BaseURL,
		)

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("neonrpc")).
			WithPadding(1).
			Println(strings.Join(lines, "\n"))
		if key == "" {
			pterm.Println()
			pterm.Println("To store a key, run: neonrpc login")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
