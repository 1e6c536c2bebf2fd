// ABOUTME: Configuration loading and parsing for ragchat-console
// ABOUTME: Supports YAML files with env var expansion, env overrides, and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the complete ragchat-console configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Backend  BackendConfig  `yaml:"backend"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Trial    TrialConfig    `yaml:"trial"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds the console's own listener configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" env:"RAGCHAT_HTTP_ADDR"`
	// BaseURL is the external URL of the console, used in absolute links
	BaseURL string `yaml:"base_url" env:"RAGCHAT_BASE_URL"`
}

// BackendConfig holds the external RAG API configuration
type BackendConfig struct {
	BaseURL string        `yaml:"base_url" env:"RAGCHAT_API_URL"`
	Timeout time.Duration `yaml:"-" env:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout" env:"RAGCHAT_API_TIMEOUT"`
}

// DatabaseConfig holds the session database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" env:"RAGCHAT_DB_PATH"`
}

// SessionConfig holds browser session configuration
type SessionConfig struct {
	Duration time.Duration `yaml:"-" env:"-"`

	DurationRaw string `yaml:"duration" env:"RAGCHAT_SESSION_DURATION"`
}

// TrialConfig holds free-trial configuration
type TrialConfig struct {
	Days int `yaml:"days" env:"RAGCHAT_TRIAL_DAYS"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" env:"RAGCHAT_LOG_LEVEL"`
	Format string `yaml:"format" env:"RAGCHAT_LOG_FORMAT"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"RAGCHAT_METRICS_ENABLED"`
	Path    string `yaml:"path" env:"RAGCHAT_METRICS_PATH"`
}

// Defaults applied when neither the file nor the environment sets a value.
const (
	DefaultSessionDuration = 7 * 24 * time.Hour
	DefaultBackendTimeout  = 30 * time.Second
	DefaultTrialDays       = 7
)

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded inside the file,
// and RAGCHAT_* environment variables override file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("applying env overrides: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment
// variable values. Unset variables are replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Trial.Days < 0 {
		return fmt.Errorf("trial.days must not be negative")
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Backend.TimeoutRaw != "" {
		cfg.Backend.Timeout, err = time.ParseDuration(cfg.Backend.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing backend timeout %q: %w", cfg.Backend.TimeoutRaw, err)
		}
	}

	if cfg.Session.DurationRaw != "" {
		cfg.Session.Duration, err = time.ParseDuration(cfg.Session.DurationRaw)
		if err != nil {
			return fmt.Errorf("parsing session duration %q: %w", cfg.Session.DurationRaw, err)
		}
	}

	return nil
}

// applyDefaults fills in values the file and environment left unset
func applyDefaults(cfg *Config) {
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = DefaultBackendTimeout
	}
	if cfg.Session.Duration == 0 {
		cfg.Session.Duration = DefaultSessionDuration
	}
	if cfg.Trial.Days == 0 {
		cfg.Trial.Days = DefaultTrialDays
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
