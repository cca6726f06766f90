package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultService is the keyring service name used by the CLI.
const DefaultService = "portainer-cli"

// KeyringStorage implements OS keyring-based token storage.
type KeyringStorage struct {
	service string
}

// NewKeyringStorage creates a new keyring-based storage.
func NewKeyringStorage(service string) (*KeyringStorage, error) {
	if service == "" {
		return nil, fmt.Errorf("keyring service is required for keyring storage")
	}
	return &KeyringStorage{service: service}, nil
}

// SaveToken saves a token to the OS keyring.
func (k *KeyringStorage) SaveToken(ctx context.Context, account, token string) error {
	if token == "" {
		return fmt.Errorf("token is empty")
	}
	if err := keyring.Set(k.service, account, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// LoadToken loads a token from the OS keyring.
func (k *KeyringStorage) LoadToken(ctx context.Context, account string) (string, error) {
	token, err := keyring.Get(k.service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to retrieve token from keyring: %w", err)
	}
	return token, nil
}

// DeleteToken deletes the token from the OS keyring.
func (k *KeyringStorage) DeleteToken(ctx context.Context, account string) error {
	if err := keyring.Delete(k.service, account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// Service returns the keyring service name.
func (k *KeyringStorage) Service() string {
	return k.service
}
