// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain keeps the saved database connection string in the OS
// credential store: the macOS Keychain (through the security command when
// available), Windows Credential Manager, or the Secret Service / KWallet on
// Linux desktops.
package keychain

import (
	stderrors "errors"
	"runtime"
	"sync"

	"sqlselect/cli/internal/errors"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "sqlselect"

// KeyDBDSN is the item holding the saved connection string.
const KeyDBDSN = "db_dsn"

// ErrNotFound is returned when nothing is stored under a key.
var ErrNotFound = stderrors.New("keychain: item not found")

// Store is a minimal secret store.
type Store interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

var (
	globalManager *Manager
	mu            sync.Mutex
)

// Manager provides thread-safe access to the saved connection string.
type Manager struct {
	mu    sync.RWMutex
	store Store
}

// NewManager opens the platform credential store. The error carries the
// KeychainUnavailable kind so callers can fall back to the config file.
func NewManager() (*Manager, error) {
	if runtime.GOOS == "darwin" {
		if backend, err := newSecurityBackend(); err == nil {
			return &Manager{store: backend}, nil
		}
	}

	ring, err := openRing()
	if err != nil {
		return nil, errors.Wrap(errors.KeychainUnavailable, "OS keychain unavailable", err)
	}
	return &Manager{store: ringStore{ring: ring}}, nil
}

// NewWithStore wraps an existing Store.
func NewWithStore(s Store) *Manager {
	return &Manager{store: s}
}

// GetManager returns the process-wide Manager, retrying initialisation on
// every call until it succeeds once.
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
	return m, nil
}

func allowedBackends() []keyring.BackendType {
	switch runtime.GOOS {
	case "darwin":
		// pass covers macOS releases where the Keychain API is refused
		return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		return []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil
	}
}

// openRing opens a native credential store. There is no encrypted-file
// fallback; the config file takes that role.
func openRing() (keyring.Keyring, error) {
	backends := allowedBackends()
	if len(backends) == 0 {
		return nil, stderrors.New("secure storage not supported on " + runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:             ServiceName,
		AllowedBackends:         backends,
		PassPrefix:              ServiceName,
		WinCredPrefix:           ServiceName,
		LibSecretCollectionName: "login",
	}
	ring, err := keyring.Open(cfg)
	if err != nil && runtime.GOOS == "darwin" {
		return nil, stderrors.New("macOS Keychain unavailable. Install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
	}
	return ring, err
}

// SaveDBDSN stores the connection string.
func (m *Manager) SaveDBDSN(dsn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Set(KeyDBDSN, dsn)
}

// LoadDBDSN returns the stored connection string, or ErrNotFound.
func (m *Manager) LoadDBDSN() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dsn, err := m.store.Get(KeyDBDSN)
	if err != nil {
		return "", err
	}
	if dsn == "" {
		return "", ErrNotFound
	}
	return dsn, nil
}

// ClearDB removes the stored connection string. A missing item is not an error.
func (m *Manager) ClearDB() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(KeyDBDSN); err != nil && !stderrors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// ringStore adapts a keyring.Keyring to Store.
type ringStore struct {
	ring keyring.Keyring
}

func (r ringStore) Set(key, value string) error {
	return r.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

func (r ringStore) Get(key string) (string, error) {
	it, err := r.ring.Get(key)
	if stderrors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(it.Data), nil
}

func (r ringStore) Delete(key string) error {
	err := r.ring.Remove(key)
	if stderrors.Is(err, keyring.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}
