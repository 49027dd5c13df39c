package tokenstore

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// keyringService is the service name in the OS keychain.
	keyringService = "github-monitor-analysis"
	// keyringItem is the key the access token is stored under.
	keyringItem = "github-token"
)

// KeyringStore persists the credential in the OS keychain (Keychain Access
// on macOS, Credential Manager on Windows, Secret Service on Linux).
type KeyringStore struct {
	service string
}

func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: keyringService}
}

func (s *KeyringStore) Get() (string, error) {
	token, err := keyring.Get(s.service, keyringItem)
	if errors.Is(err, keyring.ErrNotFound) {
		// Not an error, just not set yet.
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}
	return token, nil
}

func (s *KeyringStore) Set(token string) error {
	if err := keyring.Set(s.service, keyringItem, token); err != nil {
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}
	return nil
}

func (s *KeyringStore) Delete() error {
	err := keyring.Delete(s.service, keyringItem)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete from OS keychain: %w", err)
	}
	return nil
}
