// Package credential stores the API token in the system keyring.
package credential

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/99designs/keyring"

	"rtask/internal/config"
)

const (
	serviceName = "rtask"

	// TokenKey is the keyring entry holding the API bearer token.
	TokenKey = "api-token"
)

// ErrNotFound is returned when no credential is stored under a key.
var ErrNotFound = keyring.ErrKeyNotFound

// Store reads and writes credentials for one config directory.
type Store struct {
	ring keyring.Keyring
}

// Open returns a credential store. cfg.KeyringBackend restricts the
// backend; otherwise the platform keyrings are tried before the
// encrypted file backend under the config directory.
func Open(cfg *config.Config) (*Store, error) {
	backends := []keyring.BackendType{
		keyring.KeychainBackend,
		keyring.SecretServiceBackend,
		keyring.WinCredBackend,
		keyring.PassBackend,
		keyring.FileBackend,
	}
	if cfg.KeyringBackend != "" {
		backends = []keyring.BackendType{keyring.BackendType(cfg.KeyringBackend)}
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:              serviceName,
		AllowedBackends:          backends,
		FileDir:                  cfg.CredentialsPath(),
		FilePasswordFunc:         keyring.FixedStringPrompt(serviceName + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Store{ring: ring}, nil
}

// Get retrieves a credential value by key.
func (s *Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key.
func (s *Store) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key.
func (s *Store) Delete(key string) error {
	if err := s.ring.Remove(key); err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// IsNotFound reports whether err means the key is not stored.
// The file backend reports a missing entry on removal as fs.ErrNotExist.
func IsNotFound(err error) bool {
	return errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist)
}

// Token returns the configured bearer token: cfg.Token if set, otherwise
// the one saved by login. A missing keyring entry yields "" and no error.
func Token(cfg *config.Config) (string, error) {
	if cfg.Token != "" {
		return cfg.Token, nil
	}
	store, err := Open(cfg)
	if err != nil {
		return "", err
	}
	tok, err := store.Get(TokenKey)
	if IsNotFound(err) {
		return "", nil
	}
	return tok, err
}
