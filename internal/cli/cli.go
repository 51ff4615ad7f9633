package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/algorithmia/pkg/algorithmia"
	"github.com/matzehuels/algorithmia/pkg/cache"
	"github.com/matzehuels/algorithmia/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "algorithmia"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Global flags, bound by RootCommand.
	apiKey     string
	apiAddress string
	profile    string
	configPath string
	noCache    bool
	redisAddr  string
	retries    int

	// getenv is os.Getenv outside of tests.
	getenv func(string) string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:  newLogger(w, level),
		retries: -1,
		getenv:  os.Getenv,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Client Factory
// =============================================================================

// loadProfile resolves the active profile: config file, then environment,
// then flags.
func (c *CLI) loadProfile() (config.Profile, error) {
	path, err := c.configFile()
	if err != nil {
		return config.Profile{}, err
	}
	f, err := config.Load(path)
	if err != nil {
		return config.Profile{}, err
	}
	p, err := f.Resolve(c.profile, c.getenv)
	if err != nil {
		return config.Profile{}, err
	}

	if c.apiKey != "" {
		p.APIKey = c.apiKey
	}
	if c.apiAddress != "" {
		p.APIAddress = c.apiAddress
	}
	if c.retries >= 0 {
		p.MaxRetries = c.retries
	}
	if c.redisAddr != "" {
		p.Cache.Enabled = true
		p.Cache.Redis = c.redisAddr
	}
	if c.noCache {
		p.Cache.Enabled = false
	}
	return p, nil
}

// newClient builds a client for the active profile. The returned cache must
// be closed by the caller.
func (c *CLI) newClient(ctx context.Context) (*algorithmia.Client, cache.Cache, error) {
	p, err := c.loadProfile()
	if err != nil {
		return nil, nil, err
	}
	if p.APIKey == "" {
		c.Logger.Warn("no API key configured; set " + config.EnvAPIKey + " or run 'algo config set api_key <key>'")
	}

	opts := []algorithmia.Option{
		algorithmia.WithLogger(c.Logger),
		algorithmia.WithMaxRetries(p.MaxRetries),
	}
	if p.APIAddress != "" {
		opts = append(opts, algorithmia.WithAPIAddress(p.APIAddress))
	}
	if p.Timeout > 0 {
		opts = append(opts, algorithmia.WithTimeout(p.Timeout))
	}

	store, err := newCache(ctx, p.Cache)
	if err != nil {
		return nil, nil, err
	}
	if p.Cache.Enabled {
		opts = append(opts, algorithmia.WithCache(store, p.Cache.TTL))
	}

	client, err := algorithmia.NewClient(p.APIKey, opts...)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return client, store, nil
}

func newCache(ctx context.Context, cfg config.Cache) (cache.Cache, error) {
	if !cfg.Enabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Redis != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   appName + ":",
		})
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// configFile returns the --config path or the default location.
func (c *CLI) configFile() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.Path()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/algorithmia/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
