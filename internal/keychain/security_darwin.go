// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build darwin

package keychain

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// securityBackend stores generic passwords through /usr/bin/security, which
// avoids the per-binary ACL prompts the cgo keychain backend triggers after
// every upgrade.
type securityBackend struct{}

func newSecurityBackend() (*securityBackend, error) {
	if _, err := exec.LookPath("security"); err != nil {
		return nil, fmt.Errorf("security command not found: %w", err)
	}
	return &securityBackend{}, nil
}

func (securityBackend) Set(key, value string) error {
	_, err := security("add-generic-password", key, "-w", value, "-U")
	return err
}

func (securityBackend) Get(key string) (string, error) {
	return security("find-generic-password", key, "-w")
}

func (securityBackend) Delete(key string) error {
	_, err := security("delete-generic-password", key)
	return err
}

// security runs one keychain subcommand for key under ServiceName.
// Missing items map to ErrNotFound.
func security(sub, key string, extra ...string) (string, error) {
	args := append([]string{sub, "-a", ServiceName, "-s", key}, extra...)
	cmd := exec.Command("security", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "could not be found") {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("keychain %s %q: %s: %w", sub, key, msg, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
