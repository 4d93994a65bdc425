package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Spotify: SpotifyConfig{
			ClientID:       "test-client-id",
			ClientSecret:   "test-client-secret",
			Market:         "JP",
			TimeoutSec:     10,
			RequestDelayMs: 100,
		},
		Cache: CacheConfig{
			Dir:    ".cache/test",
			TTLSec: 3600,
		},
		Pipeline: PipelineConfig{
			SeedLimit:    5,
			DefaultLimit: 10,
		},
	}
}

// clearEnv unsets the credential variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"CLIENT_ID", "CLIENT_SECRET",
		"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET",
		"SPOTIFY_MARKET", "PLAYLISTBUILDER_CACHE_DIR",
	} {
		t.Setenv(name, "")
	}
}

func TestConfig_Validate_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing spotify client id",
			mutate:  func(c *Config) { c.Spotify.ClientID = "" },
			wantErr: true,
			errMsg:  "ClientID",
		},
		{
			name:    "missing spotify client secret",
			mutate:  func(c *Config) { c.Spotify.ClientSecret = "" },
			wantErr: true,
			errMsg:  "ClientSecret",
		},
		{
			name:    "invalid market length",
			mutate:  func(c *Config) { c.Spotify.Market = "JAPAN" },
			wantErr: true,
			errMsg:  "Market",
		},
		{
			name:    "invalid token url",
			mutate:  func(c *Config) { c.Spotify.TokenURL = "not a url" },
			wantErr: true,
			errMsg:  "TokenURL",
		},
		{
			name:    "seed limit above catalog maximum",
			mutate:  func(c *Config) { c.Pipeline.SeedLimit = 6 },
			wantErr: true,
			errMsg:  "SeedLimit",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Spotify.TimeoutSec = 0 },
			wantErr: true,
			errMsg:  "TimeoutSec",
		},
		{
			name:    "enabled cache without directory",
			mutate:  func(c *Config) { c.Cache.Dir = "" },
			wantErr: true,
			errMsg:  "cache.dir",
		},
		{
			name: "disabled cache without directory",
			mutate: func(c *Config) {
				c.Cache.Dir = ""
				c.DisableCache()
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantErr {
				require.Error(t, err, "expected validation to fail")
				assert.Contains(t, err.Error(), tt.errMsg,
					"error message should mention the problematic field")
			} else {
				assert.NoError(t, err, "expected validation to pass")
			}
		})
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLIENT_ID", "env-id")
	t.Setenv("CLIENT_SECRET", "env-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "env-id", cfg.Spotify.ClientID)
	assert.Equal(t, "env-secret", cfg.Spotify.ClientSecret)
	assert.Equal(t, "https://accounts.spotify.com/api/token", cfg.Spotify.TokenURL)
	assert.Equal(t, "https://api.spotify.com/v1/", cfg.Spotify.APIURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, 100*time.Millisecond, cfg.RequestDelay())
	assert.Equal(t, time.Hour, cfg.CacheTTL())
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, ".cache/playlistbuilder", cfg.Cache.Dir)
	assert.Equal(t, []string{"Accept", "Content-Type"}, cfg.Cache.MatchHeaders)
	assert.Equal(t, 5, cfg.Pipeline.SeedLimit)
	assert.Equal(t, 10, cfg.Pipeline.DefaultLimit)
	assert.False(t, cfg.Pipeline.DedupeRecommendations)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")

	path := filepath.Join(t.TempDir(), "playlistbuilder.yaml")
	content := `
spotify:
  client_id: file-id
  client_secret: file-secret
  market: US
  request_delay_ms: 250
cache:
  enabled: false
  ttl_sec: 60
pipeline:
  seed_limit: 3
  default_limit: 20
  dedupe_recommendations: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-id", cfg.Spotify.ClientID)
	assert.Equal(t, "env-secret", cfg.Spotify.ClientSecret, "environment wins over file")
	assert.Equal(t, "US", cfg.Spotify.Market)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestDelay())
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, time.Minute, cfg.CacheTTL())
	assert.Equal(t, 3, cfg.Pipeline.SeedLimit)
	assert.Equal(t, 20, cfg.Pipeline.DefaultLimit)
	assert.True(t, cfg.Pipeline.DedupeRecommendations)
}

func TestLoad_MissingCredentials(t *testing.T) {
	clearEnv(t)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ClientID")
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("spotify: [unterminated"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_ExampleConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")

	cfg, err := Load(filepath.Join("..", "..", "..", "config", "playlistbuilder.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "env-id", cfg.Spotify.ClientID)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, time.Hour, cfg.CacheTTL())
	assert.Equal(t, 100*time.Millisecond, cfg.RequestDelay())
	assert.Equal(t, 5, cfg.Pipeline.SeedLimit)
	assert.Equal(t, 10, cfg.Pipeline.DefaultLimit)
}
