// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Source   SourceConfig   `yaml:"source"`
	VK       VKConfig       `yaml:"vk"`
	Watch    WatchConfig    `yaml:"watch"`
	Bot      BotConfig      `yaml:"bot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig defines the ops/admin HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// SourceConfig defines the product catalog API settings.
type SourceConfig struct {
	CatalogURL string          `yaml:"catalog_url"`
	ProductURL string          `yaml:"product_url"`
	Timeout    time.Duration   `yaml:"timeout"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines catalog API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// VKConfig defines the VK messaging transport settings. Confirmation and
// Secret belong to the callback endpoint: confirmation is the string VK
// expects back when it verifies the endpoint, secret guards inbound events.
type VKConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Token        string `yaml:"token"`
	APIURL       string `yaml:"api_url"`
	Version      string `yaml:"version"`
	Confirmation string `yaml:"confirmation"`
	Secret       string `yaml:"secret"`
}

// WatchConfig defines the watch scheduler settings.
type WatchConfig struct {
	Interval    time.Duration `yaml:"interval"`
	ItemTimeout time.Duration `yaml:"item_timeout"`
}

// BotConfig defines interactive list rendering settings.
type BotConfig struct {
	PageSize int `yaml:"page_size"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applySourceDefaults(&cfg.Source)
	applyVKDefaults(&cfg.VK)
	applyWatchDefaults(&cfg.Watch)
	applyBotDefaults(&cfg.Bot)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applySourceDefaults(s *SourceConfig) {
	if s.CatalogURL == "" {
		s.CatalogURL = "https://napi.wildberries.ru/api/catalog"
	}
	if s.ProductURL == "" {
		s.ProductURL = "https://www.wildberries.ru/catalog"
	}
	if s.Timeout == 0 {
		s.Timeout = 15 * time.Second
	}
	applyRateLimitDefaults(&s.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 2.0
	}
	if r.Burst == 0 {
		r.Burst = 5
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 10000
	}
}

func applyVKDefaults(v *VKConfig) {
	if v.APIURL == "" {
		v.APIURL = "https://api.vk.com/method"
	}
	if v.Version == "" {
		v.Version = "5.131"
	}
}

func applyWatchDefaults(w *WatchConfig) {
	if w.Interval == 0 {
		w.Interval = time.Hour
	}
	if w.ItemTimeout == 0 {
		w.ItemTimeout = 30 * time.Second
	}
}

func applyBotDefaults(b *BotConfig) {
	if b.PageSize == 0 {
		b.PageSize = 4
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}

	if cfg.VK.Enabled && cfg.VK.Token == "" {
		errs = append(errs, fmt.Errorf("vk.token is required when vk.enabled is true"))
	}

	if cfg.Bot.PageSize < 1 {
		errs = append(errs, fmt.Errorf("bot.page_size must be positive (got %d)", cfg.Bot.PageSize))
	}

	return errors.Join(errs...)
}
