// Package xdg resolves XDG Base Directory paths for neonrpc.
//
// Only the config directory is used: the config file lives there, while
// secrets stay in the OS keychain.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under each XDG base.
const AppName = "neonrpc"

// ConfigHome returns $XDG_CONFIG_HOME/neonrpc (or ~/.config/neonrpc)
// without creating it.
func ConfigHome() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName), nil
}

// ConfigDir returns the config directory, creating it with private
// permissions (0700) if missing.
func ConfigDir() (string, error) {
	dir, err := ConfigHome()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
