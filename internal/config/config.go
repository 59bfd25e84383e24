// Package config provides configuration management for the gatherhub service.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration for the service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Sources  []SourceConfig `mapstructure:"sources"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnString builds a pgx-compatible connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// RedisConfig holds Redis configuration for the feed cache.
type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

// NATSConfig holds NATS message broker configuration. When disabled, the
// pipeline broadcasts new events to WebSocket clients in-process instead.
type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	Enabled       bool          `mapstructure:"enabled"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

// IngestConfig controls the scrape scheduler and adapter fan-out.
type IngestConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	AdapterTimeout time.Duration `mapstructure:"adapter_timeout"`
	RunOnStart     bool          `mapstructure:"run_on_start"`
}

// CacheConfig controls the latest-feed snapshot cache.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// SourceConfig describes a JSON feed source adapter registered at startup.
type SourceConfig struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given file (optional) plus environment
// variable overrides, on top of code defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		if dir := os.Getenv("GATHERHUB_CONFIG_DIR"); dir != "" {
			path = fmt.Sprintf("%s/config.yaml", dir)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("GATHERHUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			// Missing file falls back to defaults and env vars.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "gatherhub")
	v.SetDefault("database.user", "gatherhub")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.enabled", true)

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.max_reconnects", -1)
	v.SetDefault("nats.reconnect_wait", "2s")

	v.SetDefault("ingest.interval", "24h")
	v.SetDefault("ingest.adapter_timeout", "2m")
	v.SetDefault("ingest.run_on_start", true)

	// Matches the feed refresh cadence: a quarter of the daily scrape interval.
	v.SetDefault("cache.ttl", "6h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
