// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"neonrpc/cli/internal/auth"
	"neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/httperrors"
	"neonrpc/cli/internal/keychain"
	"neonrpc/cli/internal/logging"
	"neonrpc/cli/internal/neonapi"
	"neonrpc/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	loginSharedSecret bool
	loginGenerate     bool
	loginSkipVerify   bool
)

// loginCmd stores a Neon API key in the OS keychain after checking it works.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Store a Neon API key in the OS keychain",
	Long: `The login command prompts for a Neon API key (create one under
Account settings > API keys in the Neon console), verifies it with a single
listProjects call, and saves it in the OS keychain.

With --shared-secret it also stores the secret network callers must present
to 'neonrpc serve'. --generate creates a random one and prints it once.

NEON_API_KEY, when set, takes precedence over the stored key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			pterm.Error.Println("Secure storage is not available on this system")
			pterm.Println("   Set NEON_API_KEY in the environment instead.")
			return errReported
		}

		prompt := "Neon API key: "
		key, err := terminal.ReadSecret(prompt)
		if err != nil {
			return err
		}
		if key == "" {
			return errors.New(errors.CredentialMissing, "API key is required")
		}

		if !loginSkipVerify {
			err := spin("verifying key", func() error {
				_, err := current.clientFactory()(key).ListProjects(cmd.Context(), neonapi.ListProjectsParams{Limit: 1})
				return err
			})
			if err != nil {
				httperrors.Present(err, "verifying the API key")
				return errReported
			}
		}

		if err := km.SaveAPIKey(key); err != nil {
			pterm.Error.Println("Failed to save the API key securely")
			return err
		}
		pterm.Success.Printf("API key %s saved to the OS keychain\n", logging.MaskKey(key))
		if v, ok := os.LookupEnv(auth.EnvAPIKey); ok && strings.TrimSpace(v) != "" {
			pterm.Warning.Printf("%s is set and takes precedence over the stored key\n", auth.EnvAPIKey)
		}

		if loginSharedSecret || loginGenerate {
			return saveSharedSecret(km)
		}
		return nil
	},
}

func saveSharedSecret(km *keychain.Manager) error {
	var secret string
	if loginGenerate {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return err
		}
		secret = hex.EncodeToString(b)
	} else {
		prompt := "Shared secret for network callers: "
		s, err := terminal.ReadSecret(prompt)
		if err != nil {
			return err
		}
		if s == "" {
			return errors.New(errors.InvalidArguments, "shared secret must not be empty")
		}
		secret = s
	}

	if err := km.SaveSharedSecret(secret); err != nil {
		pterm.Error.Println("Failed to save the shared secret securely")
		return err
	}
	if loginGenerate {
		pterm.Success.Println("Generated shared secret (shown once):")
		fmt.Println(secret)
		return nil
	}
	pterm.Success.Println("Shared secret saved to the OS keychain")
	return nil
}

func init() {
	loginCmd.Flags().BoolVar(&loginSharedSecret, "shared-secret", false, "Also prompt for the shared secret used by network transports")
	loginCmd.Flags().BoolVar(&loginGenerate, "generate", false, "Generate a random shared secret instead of prompting")
	loginCmd.Flags().BoolVar(&loginSkipVerify, "no-verify", false, "Save the key without calling the Neon API")
	rootCmd.AddCommand(loginCmd)
}
