// Package config provides configuration management for the client.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all client configuration.
type Config struct {
	Backend     BackendConfig `mapstructure:"backend"`
	Bulk        BulkConfig    `mapstructure:"bulk"`
	Logging     LoggingConfig `mapstructure:"logging"`
	Credentials Credentials   `mapstructure:"-"` // Loaded separately
}

// BackendConfig holds connection settings for the aggregation backend.
type BackendConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	StreamURL      string `mapstructure:"stream_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	SessionPath    string `mapstructure:"session_path"`
}

// Timeout returns the request timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// BulkConfig holds defaults for bulk trade submission and polling.
type BulkConfig struct {
	DefaultBrokerType   string `mapstructure:"default_broker_type"`
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds"`
	PollTimeoutSeconds  int    `mapstructure:"poll_timeout_seconds"`
}

// PollInterval returns the polling cadence for bulk task status.
func (b BulkConfig) PollInterval() time.Duration {
	if b.PollIntervalSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(b.PollIntervalSeconds) * time.Second
}

// PollTimeout returns how long the CLI waits for a terminal status.
func (b BulkConfig) PollTimeout() time.Duration {
	if b.PollTimeoutSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(b.PollTimeoutSeconds) * time.Second
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Console  bool   `mapstructure:"console"`
	File     bool   `mapstructure:"file"`
	FilePath string `mapstructure:"file_path"`
}

// Credentials holds login credentials for the backend.
type Credentials struct {
	Email      string `mapstructure:"email"`
	Password   string `mapstructure:"password"`
	TOTPSecret string `mapstructure:"totp_secret"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tradegate"
	}
	return filepath.Join(home, ".config", "tradegate")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.timeout_seconds", 30)
	v.SetDefault("bulk.default_broker_type", "zerodha")
	v.SetDefault("bulk.poll_interval_seconds", 2)
	v.SetDefault("bulk.poll_timeout_seconds", 300)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if werr := createTemplateConfig(configDir); werr != nil {
				return werr
			}
			return v.Unmarshal(target)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADEGATE_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("TRADEGATE_STREAM_URL"); v != "" {
		cfg.Backend.StreamURL = v
	}
	if v := os.Getenv("TRADEGATE_EMAIL"); v != "" {
		cfg.Credentials.Email = v
	}
	if v := os.Getenv("TRADEGATE_PASSWORD"); v != "" {
		cfg.Credentials.Password = v
	}
	if v := os.Getenv("TRADEGATE_TOTP_SECRET"); v != "" {
		cfg.Credentials.TOTPSecret = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url must be set")
	}
	if c.Backend.TimeoutSeconds < 0 {
		return fmt.Errorf("backend.timeout_seconds must be non-negative")
	}
	if c.Bulk.PollIntervalSeconds < 0 {
		return fmt.Errorf("bulk.poll_interval_seconds must be non-negative")
	}
	return nil
}
