package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // dashboard.timezone must resolve on hosts without zoneinfo

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string      `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string      `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32       `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32       `yaml:"min_conns" mapstructure:"min_conns"`
	Retry       RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig guards dataset loads against a flaky provider.
type RetryConfig struct {
	Attempts         int           `yaml:"attempts" mapstructure:"attempts"`
	Backoff          time.Duration `yaml:"backoff" mapstructure:"backoff"`
	BreakerThreshold int           `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown" mapstructure:"breaker_cooldown"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateBurst      int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	TrustProxy     bool     `yaml:"trust_proxy" mapstructure:"trust_proxy"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DashboardConfig configures metric computation and caching.
type DashboardConfig struct {
	Timezone     string        `yaml:"timezone" mapstructure:"timezone"`
	SnapshotTTL  time.Duration `yaml:"snapshot_ttl" mapstructure:"snapshot_ttl"`
	CacheEntries int           `yaml:"cache_entries" mapstructure:"cache_entries"`
	CacheTTL     time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	Palette      []string      `yaml:"palette" mapstructure:"palette"`
}

// Location resolves the configured timezone.
func (d DashboardConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, eris.Wrapf(err, "config: load timezone %q", d.Timezone)
	}
	return loc, nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LICENCIAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("store.retry.attempts", 3)
	v.SetDefault("store.retry.backoff", "250ms")
	v.SetDefault("store.retry.breaker_threshold", 5)
	v.SetDefault("store.retry.breaker_cooldown", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("dashboard.timezone", "America/Bogota")
	v.SetDefault("dashboard.snapshot_ttl", "5m")
	v.SetDefault("dashboard.cache_entries", 256)
	v.SetDefault("dashboard.cache_ttl", "5m")

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

// Validate checks the settings a command mode needs. Modes are "serve",
// "report" and "migrate". All problems are reported together.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for postgres")
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q is not supported", c.Store.Driver))
	}
	if c.Store.MinConns > c.Store.MaxConns {
		errs = append(errs, "store.min_conns must be <= store.max_conns")
	}
	if c.Store.Retry.Attempts < 0 || c.Store.Retry.BreakerThreshold < 0 {
		errs = append(errs, "store.retry values must be >= 0")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.RateLimitRPS < 0 || c.Server.RateBurst < 0 {
			errs = append(errs, "server rate limit values must be >= 0")
		} else if c.Server.RateLimitRPS > 0 && c.Server.RateBurst == 0 {
			errs = append(errs, "server.rate_burst must be > 0 when rate limiting is enabled")
		}
		errs = append(errs, c.validateDashboard()...)
	case "report":
		errs = append(errs, c.validateDashboard()...)
	case "migrate":
	default:
		errs = append(errs, fmt.Sprintf("unknown mode %q", mode))
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateDashboard() []string {
	var errs []string
	if _, err := c.Dashboard.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("dashboard.timezone %q is invalid", c.Dashboard.Timezone))
	}
	if c.Dashboard.CacheEntries < 0 {
		errs = append(errs, "dashboard.cache_entries must be >= 0")
	}
	if c.Dashboard.SnapshotTTL < 0 || c.Dashboard.CacheTTL < 0 {
		errs = append(errs, "dashboard ttl values must be >= 0")
	}
	return errs
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
