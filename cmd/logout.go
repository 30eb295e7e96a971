// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"strings"

	"neonrpc/cli/internal/auth"
	"neonrpc/cli/internal/keychain"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// logoutCmd removes the stored API key and shared secret.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API key and shared secret",
	Long: `The logout command deletes the Neon API key and the transport shared
secret from the OS keychain. Environment variables are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			pterm.Warning.Println("Secure storage is not available on this system; nothing to remove")
			return nil
		}
		if err := km.ClearAll(); err != nil {
			return err
		}
		pterm.Success.Println("Stored credentials have been removed")
		for _, name := range []string{auth.EnvAPIKey, auth.EnvSharedSecret} {
			if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
				pterm.Warning.Printf("%s is still set in this environment\n", name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
