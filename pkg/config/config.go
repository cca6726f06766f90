// Package config handles loading and persisting the connection profile.
//
// The profile is a small JSON document holding the Portainer base URL and
// the session token:
//
//	{"base_url": "http://localhost:9000/", "jwt": "eyJhbGciOi..."}
//
// It lives either in the working directory (local mode) or in the user's
// home directory (global mode). The file is read once at startup and
// rewritten wholesale by Store.Save; nothing is persisted implicitly.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	// FileName is the name of the profile file in both modes.
	FileName = ".portainer-cli.json"

	// DefaultBaseURL is used until the CLI has been configured.
	DefaultBaseURL = "http://localhost:9000/"

	keyBaseURL = "base_url"
	keyJWT     = "jwt"
)

// Profile holds the connection settings for the Portainer API.
type Profile struct {
	// BaseURL always ends with a trailing slash.
	BaseURL string `json:"base_url" mapstructure:"base_url"`
	// JWT is the session token. Empty means not logged in.
	JWT string `json:"jwt" mapstructure:"jwt"`
}

// DefaultProfile returns the profile used when no file exists yet.
func DefaultProfile() *Profile {
	return &Profile{BaseURL: DefaultBaseURL}
}

// HasToken reports whether a session token is present.
func (p *Profile) HasToken() bool {
	return p != nil && p.JWT != ""
}

// InvalidConfigurationError is returned when a base URL is malformed.
type InvalidConfigurationError struct {
	Value  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid base URL %q: %s", e.Value, e.Reason)
}

// NormalizeBaseURL validates raw and returns it with a trailing slash.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &InvalidConfigurationError{Value: raw, Reason: "URL is empty"}
	}

	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return "", &InvalidConfigurationError{Value: raw, Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &InvalidConfigurationError{Value: raw, Reason: "scheme must be http or https"}
	}
	if u.Host == "" || u.Hostname() == "" {
		return "", &InvalidConfigurationError{Value: raw, Reason: "host is missing"}
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", &InvalidConfigurationError{Value: raw, Reason: "query and fragment are not allowed"}
	}

	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	return raw, nil
}

// Path returns the profile location for the given mode.
func Path(local bool) string {
	if local {
		return FileName
	}
	return filepath.Join(xdg.Home, FileName)
}

// Store reads and writes the profile file.
type Store struct {
	path string
}

// NewStore creates a store for the local or global profile file.
func NewStore(local bool) *Store {
	return NewStoreAt(Path(local))
}

// NewStoreAt creates a store backed by an explicit file path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the profile. A missing file yields the default profile.
func (s *Store) Load() (*Profile, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return DefaultProfile(), nil
	}

	v := s.newViper()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", s.path, err)
	}

	profile := DefaultProfile()
	if err := v.Unmarshal(profile); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", s.path, err)
	}
	if profile.BaseURL == "" {
		profile.BaseURL = DefaultBaseURL
	}

	return profile, nil
}

// Save rewrites the whole profile file.
func (s *Store) Save(profile *Profile) error {
	if profile == nil {
		return fmt.Errorf("profile is nil")
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	v := s.newViper()
	v.Set(keyBaseURL, profile.BaseURL)
	v.Set(keyJWT, profile.JWT)

	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", s.path, err)
	}

	return nil
}

func (s *Store) newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	v.SetConfigPermissions(0o600)
	return v
}
