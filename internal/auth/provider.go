// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth resolves the Neon API key used to build upstream clients.
//
// Providers are injected into the operation layer rather than read from
// global state, so tests can supply a fixed key and the CLI can decide the
// lookup order. The default order is the NEON_API_KEY environment variable
// first, then the OS keychain entry written by `neonrpc login`.
package auth

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/keychain"
)

// EnvAPIKey is the environment variable consulted for the API key.
const EnvAPIKey = "NEON_API_KEY"

// Provider yields the API key for one call.
type Provider interface {
	APIKey(ctx context.Context) (string, error)
}

// Named is implemented by providers that can describe their source.
type Named interface {
	Name() string
}

// Store is the subset of the keychain manager the providers read from.
type Store interface {
	LoadAPIKey() (string, error)
	LoadSharedSecret() (string, error)
}

// Static always returns the same key. An empty Static reports a missing credential.
type Static string

func (s Static) APIKey(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", errors.New(errors.CredentialMissing, "no API key provided")
	}
	return string(s), nil
}

func (Static) Name() string { return "static" }

// EnvProvider reads the key from an environment variable.
type EnvProvider struct {
	Var    string
	Lookup func(string) (string, bool)
}

// Env returns a provider reading NEON_API_KEY from the process environment.
func Env() EnvProvider {
	return EnvProvider{Var: EnvAPIKey, Lookup: os.LookupEnv}
}

func (e EnvProvider) APIKey(context.Context) (string, error) {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(e.Var)
	if !ok || strings.TrimSpace(v) == "" {
		return "", errors.New(errors.CredentialMissing, e.Var+" is not set")
	}
	return strings.TrimSpace(v), nil
}

func (e EnvProvider) Name() string { return "env:" + e.Var }

// KeychainProvider reads the key stored by `neonrpc login`.
type KeychainProvider struct {
	Open func() (Store, error)
}

// Keychain returns a provider backed by the global keychain manager.
func Keychain() KeychainProvider {
	return KeychainProvider{Open: OpenKeychain}
}

// OpenKeychain opens the global keychain manager as a Store.
func OpenKeychain() (Store, error) {
	m, err := keychain.GetManager()
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (k KeychainProvider) APIKey(context.Context) (string, error) {
	if k.Open == nil {
		return "", errors.New(errors.CredentialMissing, "keychain not configured")
	}
	st, err := k.Open()
	if err != nil {
		return "", errors.Wrap(errors.CredentialMissing, "keychain unavailable", err)
	}
	v, err := st.LoadAPIKey()
	if stderrors.Is(err, keychain.ErrNotFound) {
		return "", errors.New(errors.CredentialMissing, "no API key in keychain, run `neonrpc login`")
	}
	if err != nil {
		return "", errors.Wrap(errors.CredentialMissing, "keychain read failed", err)
	}
	return v, nil
}

func (KeychainProvider) Name() string { return "keychain" }

// Chain tries each provider in order and returns the first key found.
type Chain []Provider

// Default is the lookup order used by the CLI.
func Default() Chain {
	return Chain{Env(), Keychain()}
}

func (c Chain) APIKey(ctx context.Context) (string, error) {
	_, key, err := c.Resolve(ctx)
	return key, err
}

// Resolve returns the key together with the name of the provider that produced it.
// Only credential_missing failures fall through to the next provider.
func (c Chain) Resolve(ctx context.Context) (source, key string, err error) {
	var misses []error
	for _, p := range c {
		key, err := p.APIKey(ctx)
		if err == nil {
			return nameOf(p), key, nil
		}
		if !errors.Is(err, errors.CredentialMissing) {
			return nameOf(p), "", err
		}
		misses = append(misses, err)
	}
	if len(misses) == 0 {
		return "", "", errors.New(errors.CredentialMissing, "no credential providers configured")
	}
	return "", "", errors.Wrap(errors.CredentialMissing, "no Neon API key found", stderrors.Join(misses...))
}

func nameOf(p Provider) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	return "provider"
}
