package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/algorithmia/pkg/errors"
)

const sample = `
[profiles.default]
api_key = "simDefault1234"

[profiles.staging]
api_key     = "simStaging5678"
api_address = "https://api.staging.example.com"
max_retries = 2
timeout     = "30s"

[profiles.staging.cache]
enabled = true
ttl     = "24h"
redis   = "localhost:6379"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	f, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	p, err := f.Profile("staging")
	if err != nil {
		t.Fatalf("Profile() error: %v", err)
	}
	if p.APIKey != "simStaging5678" || p.APIAddress != "https://api.staging.example.com" {
		t.Errorf("Profile() = %+v", p)
	}
	if p.MaxRetries != 2 || p.Timeout != 30*time.Second {
		t.Errorf("MaxRetries = %d, Timeout = %v", p.MaxRetries, p.Timeout)
	}
	if !p.Cache.Enabled || p.Cache.TTL != 24*time.Hour || p.Cache.Redis != "localhost:6379" {
		t.Errorf("Cache = %+v", p.Cache)
	}

	if got := f.ProfileNames(); strings.Join(got, ",") != "default,staging" {
		t.Errorf("ProfileNames() = %v", got)
	}
}

func TestLoadMissing(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	p, err := f.Profile("")
	if err != nil {
		t.Fatalf("Profile(\"\") error: %v", err)
	}
	if p.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", p.APIKey)
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "[profiles.default\napi_key ="))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Load() error = %v, want INVALID_INPUT", err)
	}
}

func TestProfileMissing(t *testing.T) {
	f, _ := Load(writeConfig(t, sample))
	if _, err := f.Profile("prod"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Profile(prod) error = %v, want INVALID_INPUT", err)
	}
}

func TestResolve(t *testing.T) {
	f, _ := Load(writeConfig(t, sample))

	tests := []struct {
		name    string
		profile string
		env     map[string]string
		key     string
		address string
	}{
		{"file only", "", nil, "simDefault1234", ""},
		{"named profile", "staging", nil, "simStaging5678", "https://api.staging.example.com"},
		{"env key", "staging", map[string]string{EnvAPIKey: "simEnv"}, "simEnv", "https://api.staging.example.com"},
		{"env address", "", map[string]string{EnvAPIAddress: "http://localhost:9000"}, "simDefault1234", "http://localhost:9000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := f.Resolve(tt.profile, func(k string) string { return tt.env[k] })
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if p.APIKey != tt.key || p.APIAddress != tt.address {
				t.Errorf("Resolve() = key %q address %q, want %q %q", p.APIKey, p.APIAddress, tt.key, tt.address)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	f := &File{}
	f.SetProfile("", Profile{APIKey: "simSaved"})
	f.SetProfile("ci", Profile{APIKey: "simCI", Cache: Cache{Enabled: true, TTL: time.Hour}})
	if err := f.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %v, want 0600", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p, _ := loaded.Profile(""); p.APIKey != "simSaved" {
		t.Errorf("default APIKey = %q", p.APIKey)
	}
	if p, _ := loaded.Profile("ci"); !p.Cache.Enabled || p.Cache.TTL != time.Hour {
		t.Errorf("ci Cache = %+v", p.Cache)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	path, err := Path()
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-config", appName, "config.toml"); path != want {
		t.Errorf("Path() = %q, want %q", path, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	path, err = Path()
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".config", appName, "config.toml"); path != want {
		t.Errorf("Path() = %q, want %q", path, want)
	}
}

func TestMaskedKey(t *testing.T) {
	tests := []struct {
		key, want string
	}{
		{"", ""},
		{"abcd", "abcd"},
		{"simABCDEFGH1234", "****1234"},
	}
	for _, tt := range tests {
		if got := (Profile{APIKey: tt.key}).MaskedKey(); got != tt.want {
			t.Errorf("MaskedKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
