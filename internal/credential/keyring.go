package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "maildeck"

const (
	accessTokenKey  = "backend-access-token"
	refreshTokenKey = "backend-refresh-token"
)

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/maildeck/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("maildeck-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key from the system keyring.
// A missing key returns "" without error.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// KeyringTokens stores the backend token pair in the system keyring.
// It implements the gateway's TokenSource.
type KeyringTokens struct{}

// AccessToken returns the stored access token, or "" when none exists.
func (KeyringTokens) AccessToken() (string, error) {
	return Get(accessTokenKey)
}

// RefreshToken returns the stored refresh token, or "" when none exists.
func (KeyringTokens) RefreshToken() (string, error) {
	return Get(refreshTokenKey)
}

// Store persists a new token pair.
func (KeyringTokens) Store(access, refresh string) error {
	if err := Set(accessTokenKey, access); err != nil {
		return err
	}
	return Set(refreshTokenKey, refresh)
}

// Clear removes both tokens. Called when a refresh fails terminally.
func (KeyringTokens) Clear() error {
	if err := Delete(accessTokenKey); err != nil {
		return err
	}
	return Delete(refreshTokenKey)
}
