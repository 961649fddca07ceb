package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SearchConfig configures the place search client.
type SearchConfig struct {
	BaseURL          string        `yaml:"base_url" mapstructure:"base_url"`
	UserAgent        string        `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs      int           `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Limit            int           `yaml:"limit" mapstructure:"limit"`
	RateLimit        float64       `yaml:"rate_limit" mapstructure:"rate_limit"` // requests/sec, 0 = unlimited
	MaxAttempts      int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int           `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	Multiplier       float64       `yaml:"multiplier" mapstructure:"multiplier"`
	Circuit          CircuitConfig `yaml:"circuit" mapstructure:"circuit"`
}

// Timeout returns the per-request HTTP timeout.
func (s SearchConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// InitialBackoff returns the delay before the first retry.
func (s SearchConfig) InitialBackoff() time.Duration {
	return time.Duration(s.InitialBackoffMs) * time.Millisecond
}

// CircuitConfig configures the optional search circuit breaker. A zero
// FailureThreshold disables it.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// Enabled reports whether a breaker should be installed.
func (c CircuitConfig) Enabled() bool { return c.FailureThreshold > 0 }

// BatchConfig configures batch processing.
type BatchConfig struct {
	PacingMs           int `yaml:"pacing_ms" mapstructure:"pacing_ms"`
	MaxConcurrentFiles int `yaml:"max_concurrent_files" mapstructure:"max_concurrent_files"`
}

// Pacing returns the pause between resolutions.
func (b BatchConfig) Pacing() time.Duration {
	return time.Duration(b.PacingMs) * time.Millisecond
}

// CacheConfig configures the search response cache.
type CacheConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"` // "", "sqlite" or "postgres"
	DSN      string `yaml:"dsn" mapstructure:"dsn"`
	Table    string `yaml:"table" mapstructure:"table"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TGEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("search.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("search.user_agent", "transcript-geo/1.0 (podcast transcript location resolver)")
	v.SetDefault("search.timeout_secs", 15)
	v.SetDefault("search.limit", 10)
	v.SetDefault("search.rate_limit", 1)
	v.SetDefault("search.max_attempts", 3)
	v.SetDefault("search.initial_backoff_ms", 1000)
	v.SetDefault("search.multiplier", 2)
	v.SetDefault("search.circuit.failure_threshold", 0)
	v.SetDefault("search.circuit.reset_timeout_secs", 60)
	v.SetDefault("batch.pacing_ms", 600)
	v.SetDefault("batch.max_concurrent_files", 2)
	v.SetDefault("cache.driver", "")
	v.SetDefault("cache.dsn", "")
	v.SetDefault("cache.table", "search_cache")
	v.SetDefault("cache.ttl_hours", 720)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. mode is one of "resolve",
// "serve" or "cache".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "resolve", "serve":
		errs = append(errs, c.validateSearch()...)
		errs = append(errs, c.validateCache()...)
		if c.Batch.PacingMs < 0 {
			errs = append(errs, "batch.pacing_ms must be >= 0")
		}
		if mode == "resolve" && (c.Batch.MaxConcurrentFiles < 1 || c.Batch.MaxConcurrentFiles > 16) {
			errs = append(errs, "batch.max_concurrent_files must be between 1 and 16")
		}
		if mode == "serve" && c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "cache":
		errs = append(errs, c.validateCache()...)
		if c.Cache.Driver == "" {
			errs = append(errs, "cache.driver is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateSearch() []string {
	var errs []string
	if strings.TrimSpace(c.Search.BaseURL) == "" {
		errs = append(errs, "search.base_url is required")
	}
	if strings.TrimSpace(c.Search.UserAgent) == "" {
		errs = append(errs, "search.user_agent is required")
	}
	if c.Search.MaxAttempts < 1 {
		errs = append(errs, "search.max_attempts must be >= 1")
	}
	if c.Search.RateLimit < 0 {
		errs = append(errs, "search.rate_limit must be >= 0")
	}
	if c.Search.Multiplier < 1 {
		errs = append(errs, "search.multiplier must be >= 1")
	}
	return errs
}

func (c *Config) validateCache() []string {
	switch c.Cache.Driver {
	case "", "sqlite":
		return nil
	case "postgres":
		if c.Cache.DSN == "" {
			return []string{"cache.dsn is required for the postgres driver"}
		}
		return nil
	default:
		return []string{"cache.driver must be one of sqlite, postgres"}
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
