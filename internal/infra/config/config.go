// Package config provides configuration loading from YAML files.
package config

import (
	"io/fs"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Spotify  SpotifyConfig  `yaml:"spotify"`
	Cache    CacheConfig    `yaml:"cache"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// SpotifyConfig represents Spotify API configuration.
type SpotifyConfig struct {
	ClientID       string `yaml:"client_id" validate:"required"`
	ClientSecret   string `yaml:"client_secret" validate:"required"`
	TokenURL       string `yaml:"token_url" default:"https://accounts.spotify.com/api/token" validate:"omitempty,url"`
	APIURL         string `yaml:"api_url" default:"https://api.spotify.com/v1/" validate:"omitempty,url"`
	Market         string `yaml:"market" validate:"omitempty,len=2"`
	TimeoutSec     int    `yaml:"timeout_sec" default:"10" validate:"gte=1,lte=300"`
	RequestDelayMs int    `yaml:"request_delay_ms" default:"100" validate:"gte=0,lte=60000"`
}

// CacheConfig represents the on-disk response cache configuration.
type CacheConfig struct {
	Enabled      *bool    `yaml:"enabled" default:"true"`
	Dir          string   `yaml:"dir" default:".cache/playlistbuilder"`
	TTLSec       int      `yaml:"ttl_sec" default:"3600" validate:"gte=1"`
	MatchHeaders []string `yaml:"match_headers" default:"[\"Accept\",\"Content-Type\"]"`
}

// PipelineConfig represents the playlist pipeline configuration.
type PipelineConfig struct {
	SeedLimit             int  `yaml:"seed_limit" default:"5" validate:"gte=1,lte=5"`
	DefaultLimit          int  `yaml:"default_limit" default:"10" validate:"gte=1,lte=100"`
	DedupeRecommendations bool `yaml:"dedupe_recommendations"`
}

// Load loads configuration from a YAML file.
// A missing file is not an error: defaults and environment variables apply.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Optional file
		case err != nil:
			return nil, errors.Wrap(err, "failed to read config file")
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, errors.Wrap(err, "failed to parse config file")
			}
		}
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
// The SPOTIFY_ prefixed names win over the short ones.
func (c *Config) overrideFromEnv() {
	for _, name := range []string{"CLIENT_ID", "SPOTIFY_CLIENT_ID"} {
		if v := os.Getenv(name); v != "" {
			c.Spotify.ClientID = v
		}
	}
	for _, name := range []string{"CLIENT_SECRET", "SPOTIFY_CLIENT_SECRET"} {
		if v := os.Getenv(name); v != "" {
			c.Spotify.ClientSecret = v
		}
	}
	if v := os.Getenv("SPOTIFY_MARKET"); v != "" {
		c.Spotify.Market = v
	}
	if v := os.Getenv("PLAYLISTBUILDER_CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.CacheEnabled() && c.Cache.Dir == "" {
		return errors.New("cache.dir is required when the cache is enabled")
	}

	return nil
}

// CacheEnabled reports whether the response cache is enabled.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

// DisableCache turns the response cache off.
func (c *Config) DisableCache() {
	disabled := false
	c.Cache.Enabled = &disabled
}

// Timeout returns the HTTP timeout for catalog calls.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Spotify.TimeoutSec) * time.Second
}

// RequestDelay returns the pause after each response not served from the cache.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.Spotify.RequestDelayMs) * time.Millisecond
}

// CacheTTL returns how long responses stay cached.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSec) * time.Second
}
