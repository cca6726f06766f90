// Package storage keeps session tokens outside the profile file.
//
// Tokens are keyed by account, which the CLI sets to the Portainer base URL
// so that profiles pointing at different servers never share a token.
package storage

import (
	"context"
	"errors"
)

// ErrTokenNotFound is returned by LoadToken when no token is stored.
var ErrTokenNotFound = errors.New("token not found")

// TokenStorage is an interface for storing and retrieving tokens.
type TokenStorage interface {
	// SaveToken stores a token for account, replacing any previous one.
	SaveToken(ctx context.Context, account, token string) error
	// LoadToken retrieves the token for account or ErrTokenNotFound.
	LoadToken(ctx context.Context, account string) (string, error)
	// DeleteToken removes the token for account. Deleting a missing token
	// is not an error.
	DeleteToken(ctx context.Context, account string) error
}
