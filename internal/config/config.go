package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/ensemble"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/eval"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/feed"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/gate"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/orchestrator"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/state"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/update"
	"gopkg.in/yaml.v3"
)

// DefaultFeedURL is the public draw history page the engine polls.
const DefaultFeedURL = "https://www.gaga28.com/gengduo.php?page=1&type=1"

// #region types

// Config is the top-level ensemble.yml configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Feed    FeedConfig    `yaml:"feed"`
	Engine  EngineConfig  `yaml:"engine"`
	Journal JournalConfig `yaml:"journal"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// StoreConfig selects the snapshot backend.
type StoreConfig struct {
	Backend string      `yaml:"backend"` // file, sqlite, redis or memory
	Path    string      `yaml:"path"`    // file and sqlite
	Redis   RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig holds the redis backend connection.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// FeedConfig describes where draws come from and how often.
type FeedConfig struct {
	URL      string        `yaml:"url"`
	File     string        `yaml:"file,omitempty"` // overrides URL when set
	Timeout  time.Duration `yaml:"timeout"`
	Interval time.Duration `yaml:"interval"`
}

// EngineConfig holds the vote and weight rules.
type EngineConfig struct {
	Reward              float64 `yaml:"reward"`
	DecayFactor         float64 `yaml:"decay_factor"`
	MinWeight           float64 `yaml:"min_weight"`
	MaxWeight           float64 `yaml:"max_weight"`
	VolatilityThreshold int     `yaml:"volatility_threshold"`
	VolatilityBonus     float64 `yaml:"volatility_bonus"`
	TrendWindow         int     `yaml:"trend_window"`
}

// JournalConfig enables the cycle journal when Path is set.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig enables the snapshot service when GRPCAddr is set.
type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `yaml:"level"`
	Color bool   `yaml:"color"`
}

// #endregion types

// #region defaults

// DefaultConfig returns the stock configuration: a JSON snapshot file, the
// public feed polled every 30 seconds, no journal and no gRPC listener.
func DefaultConfig() Config {
	upd := update.DefaultUpdateConfig()
	ens := ensemble.DefaultConfig()
	return Config{
		Store: StoreConfig{
			Backend: string(state.BackendFile),
			Path:    "ai_brain.json",
			Redis: RedisConfig{
				Addr: "localhost:6379",
				Key:  state.DefaultRedisKey,
			},
		},
		Feed: FeedConfig{
			URL:      DefaultFeedURL,
			Timeout:  10 * time.Second,
			Interval: 30 * time.Second,
		},
		Engine: EngineConfig{
			Reward:              upd.Reward,
			DecayFactor:         upd.DecayFactor,
			MinWeight:           upd.MinWeight,
			MaxWeight:           upd.MaxWeight,
			VolatilityThreshold: ens.VolatilityThreshold,
			VolatilityBonus:     ens.VolatilityBonus,
			TrendWindow:         state.TrendWindow,
		},
		Log: LogConfig{
			Level: "info",
			Color: true,
		},
	}
}

// #endregion defaults

// #region load

// Load reads a YAML file over the defaults, applies ENSEMBLE_* environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from ENSEMBLE_* variables. Malformed numbers are errors.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("ENSEMBLE_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("ENSEMBLE_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("ENSEMBLE_REDIS_ADDR"); v != "" {
		c.Store.Redis.Addr = v
	}
	if v := os.Getenv("ENSEMBLE_REDIS_PASSWORD"); v != "" {
		c.Store.Redis.Password = v
	}
	if v := os.Getenv("ENSEMBLE_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ENSEMBLE_REDIS_DB: %w", err)
		}
		c.Store.Redis.DB = n
	}
	if v := os.Getenv("ENSEMBLE_FEED_URL"); v != "" {
		c.Feed.URL = v
	}
	if v := os.Getenv("ENSEMBLE_FEED_FILE"); v != "" {
		c.Feed.File = v
	}
	if v := os.Getenv("ENSEMBLE_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ENSEMBLE_POLL_INTERVAL: %w", err)
		}
		c.Feed.Interval = d
	}
	if v := os.Getenv("ENSEMBLE_JOURNAL_PATH"); v != "" {
		c.Journal.Path = v
	}
	if v := os.Getenv("ENSEMBLE_GRPC_ADDR"); v != "" {
		c.Server.GRPCAddr = v
	}
	if v := os.Getenv("ENSEMBLE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ENSEMBLE_LOG_COLOR"); v != "" {
		c.Log.Color = v == "true" || v == "1"
	}
	return nil
}

// #endregion load

// #region validate

// Validate performs strict validation on the configuration.
func (c *Config) Validate() error {
	switch state.Backend(c.Store.Backend) {
	case state.BackendFile, state.BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the %s backend", c.Store.Backend)
		}
	case state.BackendRedis:
		if c.Store.Redis.Addr == "" {
			return errors.New("store.redis.addr is required for the redis backend")
		}
	case state.BackendMemory:
	default:
		return fmt.Errorf("unknown store backend '%s' (expected file, sqlite, redis or memory)", c.Store.Backend)
	}

	if c.Feed.URL == "" && c.Feed.File == "" {
		return errors.New("feed.url or feed.file is required")
	}
	if c.Feed.Interval <= 0 {
		return fmt.Errorf("feed.interval must be > 0, got %s", c.Feed.Interval)
	}
	if c.Feed.Timeout <= 0 {
		return fmt.Errorf("feed.timeout must be > 0, got %s", c.Feed.Timeout)
	}

	e := c.Engine
	if e.MinWeight <= 0 || e.MaxWeight < e.MinWeight {
		return fmt.Errorf("engine weights need 0 < min_weight <= max_weight, got %.2f/%.2f", e.MinWeight, e.MaxWeight)
	}
	if e.DecayFactor <= 0 || e.DecayFactor > 1 {
		return fmt.Errorf("engine.decay_factor must be in (0, 1], got %.2f", e.DecayFactor)
	}
	if e.Reward < 0 {
		return fmt.Errorf("engine.reward must be >= 0, got %.2f", e.Reward)
	}
	if e.TrendWindow <= 0 {
		return fmt.Errorf("engine.trend_window must be > 0, got %d", e.TrendWindow)
	}
	return nil
}

// #endregion validate

// #region wiring

// StoreOptions converts the store section for state.Open.
func (c *Config) StoreOptions() state.Options {
	return state.Options{
		Backend:       state.Backend(c.Store.Backend),
		Path:          c.Store.Path,
		RedisAddr:     c.Store.Redis.Addr,
		RedisPassword: c.Store.Redis.Password,
		RedisDB:       c.Store.Redis.DB,
		RedisKey:      c.Store.Redis.Key,
	}
}

// Source builds the feed source: the file when set, otherwise the URL.
func (c *Config) Source() feed.Source {
	if c.Feed.File != "" {
		return feed.NewFileSource(c.Feed.File)
	}
	return feed.NewHTTPSource(c.Feed.URL, c.Feed.Timeout)
}

// EnsembleConfig returns the combiner parameters.
func (c *Config) EnsembleConfig() ensemble.Config {
	ens := ensemble.DefaultConfig()
	ens.VolatilityThreshold = c.Engine.VolatilityThreshold
	ens.VolatilityBonus = c.Engine.VolatilityBonus
	return ens
}

// UpdateConfig returns the weight adapter parameters.
func (c *Config) UpdateConfig() update.UpdateConfig {
	upd := update.DefaultUpdateConfig()
	upd.Reward = c.Engine.Reward
	upd.DecayFactor = c.Engine.DecayFactor
	upd.MinWeight = c.Engine.MinWeight
	upd.MaxWeight = c.Engine.MaxWeight
	return upd
}

// ControllerConfig returns the cycle controller parameters.
func (c *Config) ControllerConfig() orchestrator.Config {
	oc := orchestrator.DefaultConfig()
	oc.Interval = c.Feed.Interval
	oc.TrendWindow = c.Engine.TrendWindow
	oc.Update = c.UpdateConfig()
	oc.Gate = gate.DefaultGateConfig()
	oc.Eval = eval.EvalConfig{
		MinWeight:   c.Engine.MinWeight,
		MaxWeight:   c.Engine.MaxWeight,
		TrendWindow: c.Engine.TrendWindow,
	}
	return oc
}

// #endregion wiring
