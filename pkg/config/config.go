// Package config loads client settings from a TOML file and the environment.
//
// The file lives at $XDG_CONFIG_HOME/algorithmia/config.toml (falling back to
// ~/.config/algorithmia/config.toml) and holds named profiles:
//
//	[profiles.default]
//	api_key = "sim..."
//
//	[profiles.staging]
//	api_key     = "sim..."
//	api_address = "https://api.staging.example.com"
//	max_retries = 2
//	timeout     = "30s"
//
//	[profiles.staging.cache]
//	enabled = true
//	ttl     = "24h"
//	redis   = "localhost:6379"
//
// Settings are applied in order: file profile, then the ALGORITHMIA_API_KEY
// and ALGORITHMIA_API environment variables, then command-line flags.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/algorithmia/pkg/errors"
)

const (
	appName = "algorithmia"

	// DefaultProfile is used when no profile is named.
	DefaultProfile = "default"

	// EnvAPIKey overrides the profile's API key.
	EnvAPIKey = "ALGORITHMIA_API_KEY"
	// EnvAPIAddress overrides the profile's API address.
	EnvAPIAddress = "ALGORITHMIA_API"
)

// Profile is one set of client settings.
type Profile struct {
	APIKey     string        `toml:"api_key,omitempty"`
	APIAddress string        `toml:"api_address,omitempty"`
	MaxRetries int           `toml:"max_retries,omitempty"`
	Timeout    time.Duration `toml:"timeout,omitempty"`
	Cache      Cache         `toml:"cache,omitempty"`
}

// Cache configures the algorithm result cache.
type Cache struct {
	Enabled bool          `toml:"enabled,omitempty"`
	TTL     time.Duration `toml:"ttl,omitempty"`

	// Redis is a host:port address. When empty the file cache is used.
	Redis         string `toml:"redis,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db,omitempty"`
}

// File is the parsed configuration file.
type File struct {
	Profiles map[string]Profile `toml:"profiles"`
}

// Path returns the configuration file path using the XDG convention.
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path. A missing file yields an empty configuration.
func Load(path string) (*File, error) {
	f := &File{Profiles: map[string]Profile{}}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if f.Profiles == nil {
		f.Profiles = map[string]Profile{}
	}
	return f, nil
}

// Save writes f to path, creating the directory if needed. The file may hold
// API keys and is written with owner-only permissions.
func (f *File) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0600)
}

// Profile returns the named profile. An empty name selects DefaultProfile,
// which may be absent; any other missing profile is an error.
func (f *File) Profile(name string) (Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	p, ok := f.Profiles[name]
	if !ok && name != DefaultProfile {
		return Profile{}, errors.New(errors.ErrCodeInvalidInput, "profile %q not found", name)
	}
	return p, nil
}

// SetProfile stores p under name.
func (f *File) SetProfile(name string, p Profile) {
	if name == "" {
		name = DefaultProfile
	}
	if f.Profiles == nil {
		f.Profiles = map[string]Profile{}
	}
	f.Profiles[name] = p
}

// ProfileNames returns the profile names in sorted order.
func (f *File) ProfileNames() []string {
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the named profile with environment overrides applied.
// getenv is usually os.Getenv.
func (f *File) Resolve(name string, getenv func(string) string) (Profile, error) {
	p, err := f.Profile(name)
	if err != nil {
		return Profile{}, err
	}
	if v := getenv(EnvAPIKey); v != "" {
		p.APIKey = v
	}
	if v := getenv(EnvAPIAddress); v != "" {
		p.APIAddress = v
	}
	return p, nil
}

// MaskedKey returns the key with all but the last four characters hidden.
func (p Profile) MaskedKey() string {
	if len(p.APIKey) <= 4 {
		return p.APIKey
	}
	return "****" + p.APIKey[len(p.APIKey)-4:]
}
