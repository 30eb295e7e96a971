// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for neonrpc.
// It stores the Neon API key and the RPC transport shared secret in the OS
// credential store (macOS Keychain, Windows Credential Manager, Secret Service
// or pass on Linux) so neither ever lands in the config file.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("keychain: item not found")

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "neonrpc"

// Keys used for storing secrets in the OS keychain.
const (
	KeyAPIKey       = "neon_api_key"
	KeySharedSecret = "rpc_shared_secret"
)

// store is the minimal set of operations the manager needs from a backend.
type store interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// Manager provides thread-safe access to the secrets neonrpc keeps.
type Manager struct {
	mu      sync.RWMutex
	backend store
}

// NewManager opens the native credential store for this OS.
func NewManager() (*Manager, error) {
	// Try native security backend first on macOS
	if runtime.GOOS == "darwin" {
		if backend, err := newSecurityBackend(); err == nil {
			return &Manager{backend: backend}, nil
		}
	}

	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return NewManagerWithKeyring(ring), nil
}

// NewManagerWithKeyring wraps an already opened keyring.
func NewManagerWithKeyring(ring keyring.Keyring) *Manager {
	return &Manager{backend: ringStore{ring: ring}}
}

// GetManager returns the global keychain manager instance.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

// openRing opens the OS keyring restricted to native backends. There is
// no encrypted-file fallback.
func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on " + runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
	}
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}
	return keyring.Open(cfg)
}

// SaveAPIKey stores the Neon API key.
func (m *Manager) SaveAPIKey(key string) error { return m.set(KeyAPIKey, key) }

// LoadAPIKey returns the stored Neon API key or ErrNotFound.
func (m *Manager) LoadAPIKey() (string, error) { return m.get(KeyAPIKey) }

// SaveSharedSecret stores the bearer secret RPC transports require.
func (m *Manager) SaveSharedSecret(secret string) error { return m.set(KeySharedSecret, secret) }

// LoadSharedSecret returns the stored shared secret or ErrNotFound.
func (m *Manager) LoadSharedSecret() (string, error) { return m.get(KeySharedSecret) }

// ClearAll removes every neonrpc secret. Missing items are not an error.
func (m *Manager) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, k := range []string{KeyAPIKey, KeySharedSecret} {
		if err := m.backend.Delete(k); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) set(key, value string) error {
	if value == "" {
		return errors.New("keychain: refusing to store empty value for " + key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backend.Set(key, value)
}

func (m *Manager) get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, err := m.backend.Get(key)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// ringStore adapts keyring.Keyring to store.
type ringStore struct {
	ring keyring.Keyring
}

func (r ringStore) Set(key, value string) error {
	return r.ring.Set(keyring.Item{Key: key, Data: []byte(value)})
}

func (r ringStore) Get(key string) (string, error) {
	it, err := r.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(it.Data), nil
}

func (r ringStore) Delete(key string) error {
	err := r.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}
