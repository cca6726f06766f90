// Package auth manages the Portainer session token.
//
// A session starts with Login, which exchanges a username and password for
// a JWT through the auth endpoint. The token is persisted either in the
// profile file (the default) or in the OS keyring, keyed by base URL, when
// the Manager has a token storage:
//
//	m := auth.NewManager(store, nil)
//	profile, _ := m.Load(ctx)
//	session, _ := m.Login(ctx, client, profile, "admin", "secret")
//
// Claims are decoded without signature verification; they are only used to
// show who is logged in and when the session expires.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/ilhasoft/portainer-cli/pkg/auth/storage"
	"github.com/ilhasoft/portainer-cli/pkg/config"
)

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
}

// ProfileStore loads and saves the connection profile.
type ProfileStore interface {
	Load() (*config.Profile, error)
	Save(profile *config.Profile) error
}

// Session is the result of a successful login.
type Session struct {
	Token string
	// Claims is nil when the token is not a decodable JWT.
	Claims *Claims
}

// Manager persists the profile and its token.
type Manager struct {
	profiles ProfileStore
	tokens   storage.TokenStorage
}

// NewManager creates a manager. With a nil tokens storage the token is kept
// in the profile file.
func NewManager(profiles ProfileStore, tokens storage.TokenStorage) *Manager {
	return &Manager{profiles: profiles, tokens: tokens}
}

// Load reads the profile and fills in the token from the token storage when
// the file does not carry one.
func (m *Manager) Load(ctx context.Context) (*config.Profile, error) {
	profile, err := m.profiles.Load()
	if err != nil {
		return nil, err
	}
	if profile.JWT != "" || m.tokens == nil {
		return profile, nil
	}

	token, err := m.tokens.LoadToken(ctx, profile.BaseURL)
	switch {
	case errors.Is(err, storage.ErrTokenNotFound):
		return profile, nil
	case err != nil:
		return nil, err
	}
	profile.JWT = token
	return profile, nil
}

// Configure validates baseURL and persists it.
func (m *Manager) Configure(ctx context.Context, profile *config.Profile, baseURL string) error {
	normalized, err := config.NormalizeBaseURL(baseURL)
	if err != nil {
		return err
	}
	profile.BaseURL = normalized
	return m.save(ctx, profile)
}

// Login authenticates and persists the returned token.
func (m *Manager) Login(ctx context.Context, a Authenticator, profile *config.Profile, username, password string) (*Session, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	token, err := a.Authenticate(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if token == "" {
		return nil, fmt.Errorf("login failed: empty token")
	}

	profile.JWT = token
	if err := m.save(ctx, profile); err != nil {
		return nil, err
	}

	session := &Session{Token: token}
	if claims, err := ParseClaims(token); err == nil {
		session.Claims = claims
	}
	return session, nil
}

// Logout forgets the token in every location it may be stored.
func (m *Manager) Logout(ctx context.Context, profile *config.Profile) error {
	profile.JWT = ""
	if m.tokens != nil {
		if err := m.tokens.DeleteToken(ctx, profile.BaseURL); err != nil {
			return err
		}
	}
	return m.profiles.Save(profile)
}

func (m *Manager) save(ctx context.Context, profile *config.Profile) error {
	if m.tokens == nil || profile.JWT == "" {
		return m.profiles.Save(profile)
	}

	if err := m.tokens.SaveToken(ctx, profile.BaseURL, profile.JWT); err != nil {
		return err
	}
	onDisk := *profile
	onDisk.JWT = ""
	return m.profiles.Save(&onDisk)
}
