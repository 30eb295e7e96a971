//go:build !darwin

package keychain

import "errors"

var errNoSecurityCLI = errors.New("keychain: security CLI is macOS only")

// securityBackend is never constructed off macOS; NewManager goes straight
// to the keyring there.
type securityBackend struct{}

func newSecurityBackend() (*securityBackend, error) { return nil, errNoSecurityCLI }

func (securityBackend) Set(string, string) error   { return errNoSecurityCLI }
func (securityBackend) Get(string) (string, error) { return "", errNoSecurityCLI }
func (securityBackend) Delete(string) error        { return errNoSecurityCLI }
