package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/feed"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ensemble.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "ai_brain.json", cfg.Store.Path)
	assert.Equal(t, DefaultFeedURL, cfg.Feed.URL)
	assert.Equal(t, 30*time.Second, cfg.Feed.Interval)
	assert.Equal(t, 10*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, 0.3, cfg.Engine.Reward)
	assert.Equal(t, 0.9, cfg.Engine.DecayFactor)
	assert.Equal(t, 0.5, cfg.Engine.MinWeight)
	assert.Equal(t, 5.0, cfg.Engine.MaxWeight)
	assert.Equal(t, 9, cfg.Engine.VolatilityThreshold)
	assert.Equal(t, 30, cfg.Engine.TrendWindow)
	assert.Empty(t, cfg.Journal.Path)
	assert.Empty(t, cfg.Server.GRPCAddr)
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `store:
  backend: sqlite
  path: /var/lib/ensemble/state.db
feed:
  interval: 45s
engine:
  reward: 0.5
journal:
  path: /var/lib/ensemble/journal.db
server:
  grpc_addr: ":7070"
log:
  level: debug
  color: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/var/lib/ensemble/state.db", cfg.Store.Path)
	assert.Equal(t, 45*time.Second, cfg.Feed.Interval)
	assert.Equal(t, 0.5, cfg.Engine.Reward)
	// Fields missing from the file keep their defaults.
	assert.Equal(t, 0.9, cfg.Engine.DecayFactor)
	assert.Equal(t, DefaultFeedURL, cfg.Feed.URL)
	assert.Equal(t, "/var/lib/ensemble/journal.db", cfg.Journal.Path)
	assert.Equal(t, ":7070", cfg.Server.GRPCAddr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Color)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/ensemble.yml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "store:\n  - this is invalid\n    yaml syntax\n")
	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: postgres\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend 'postgres'")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENSEMBLE_STORE_BACKEND", "redis")
	t.Setenv("ENSEMBLE_REDIS_ADDR", "redis.internal:6379")
	t.Setenv("ENSEMBLE_REDIS_DB", "3")
	t.Setenv("ENSEMBLE_POLL_INTERVAL", "1m")
	t.Setenv("ENSEMBLE_FEED_FILE", "/tmp/draws.json")
	t.Setenv("ENSEMBLE_GRPC_ADDR", "127.0.0.1:7070")
	t.Setenv("ENSEMBLE_LOG_COLOR", "0")

	path := writeConfig(t, "store:\n  backend: sqlite\n  path: state.db\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Store.Backend, "env wins over the file")
	assert.Equal(t, "redis.internal:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	assert.Equal(t, time.Minute, cfg.Feed.Interval)
	assert.Equal(t, "/tmp/draws.json", cfg.Feed.File)
	assert.Equal(t, "127.0.0.1:7070", cfg.Server.GRPCAddr)
	assert.False(t, cfg.Log.Color)
}

func TestLoad_BadEnvNumber(t *testing.T) {
	t.Setenv("ENSEMBLE_REDIS_DB", "three")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENSEMBLE_REDIS_DB")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"file needs path", func(c *Config) { c.Store.Path = "" }, "store.path is required"},
		{"redis needs addr", func(c *Config) { c.Store.Backend = "redis"; c.Store.Redis.Addr = "" }, "store.redis.addr"},
		{"memory needs nothing", func(c *Config) { c.Store.Backend = "memory"; c.Store.Path = "" }, ""},
		{"feed source", func(c *Config) { c.Feed.URL = "" }, "feed.url or feed.file"},
		{"file feed alone", func(c *Config) { c.Feed.URL = ""; c.Feed.File = "draws.json" }, ""},
		{"interval", func(c *Config) { c.Feed.Interval = 0 }, "feed.interval"},
		{"timeout", func(c *Config) { c.Feed.Timeout = -time.Second }, "feed.timeout"},
		{"weight order", func(c *Config) { c.Engine.MaxWeight = 0.1 }, "min_weight <= max_weight"},
		{"decay", func(c *Config) { c.Engine.DecayFactor = 1.5 }, "decay_factor"},
		{"reward", func(c *Config) { c.Engine.Reward = -1 }, "engine.reward"},
		{"trend", func(c *Config) { c.Engine.TrendWindow = 0 }, "trend_window"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestWiring(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Backend = "redis"
	cfg.Store.Redis.DB = 2
	cfg.Feed.Interval = 5 * time.Second
	cfg.Engine.Reward = 0.4
	cfg.Engine.MaxWeight = 3
	cfg.Engine.VolatilityBonus = 1.5

	opts := cfg.StoreOptions()
	assert.Equal(t, state.BackendRedis, opts.Backend)
	assert.Equal(t, 2, opts.RedisDB)
	assert.Equal(t, state.DefaultRedisKey, opts.RedisKey)

	oc := cfg.ControllerConfig()
	assert.Equal(t, 5*time.Second, oc.Interval)
	assert.Equal(t, 0.4, oc.Update.Reward)
	assert.Equal(t, 3.0, oc.Update.MaxWeight)
	assert.Equal(t, 3.0, oc.Eval.MaxWeight)

	assert.Equal(t, 1.5, cfg.EnsembleConfig().VolatilityBonus)
	assert.Equal(t, 9, cfg.EnsembleConfig().VolatilityThreshold)
}

func TestSourceSelection(t *testing.T) {
	cfg := DefaultConfig()
	_, isHTTP := cfg.Source().(*feed.HTTPSource)
	assert.True(t, isHTTP)

	cfg.Feed.File = "draws.json"
	_, isFile := cfg.Source().(*feed.FileSource)
	assert.True(t, isFile)
}
