// Package config loads and validates SDK configuration from files,
// strings and SANDGRID_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/sandgrid/sandgrid-go/internal/logger"
)

// Config is the complete SDK configuration
type Config struct {
	// Endpoint is the service base URL
	Endpoint string `mapstructure:"endpoint"`

	// Region selects the service region (sent at session creation)
	Region string `mapstructure:"region"`

	// APIKey authenticates with a static key. Ignored when OAuth is set.
	APIKey string `mapstructure:"api_key"`

	// OAuth configures client-credentials authentication
	OAuth OAuthConfig `mapstructure:"oauth"`

	// TimeoutSeconds bounds a single request; zero selects the default
	TimeoutSeconds int `mapstructure:"timeout_seconds"`

	// Transfer configures chunked file transfers
	Transfer TransferConfig `mapstructure:"transfer"`

	// Watch configures directory watching
	Watch WatchConfig `mapstructure:"watch"`

	// Log configures the SDK logger
	Log LogConfig `mapstructure:"log"`
}

// OAuthConfig holds client-credentials grant settings
type OAuthConfig struct {
	TokenURL     string   `mapstructure:"token_url"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	Scopes       []string `mapstructure:"scopes"`
}

// Enabled reports whether any OAuth field is set
func (o OAuthConfig) Enabled() bool {
	return o.TokenURL != "" || o.ClientID != "" || o.ClientSecret != ""
}

// Complete reports whether all required OAuth fields are present
func (o OAuthConfig) Complete() bool {
	return o.TokenURL != "" && o.ClientID != "" && o.ClientSecret != ""
}

// TransferConfig configures chunked file transfers
type TransferConfig struct {
	// ChunkSizeBytes is the per-call payload size; zero selects the
	// built-in default
	ChunkSizeBytes int64 `mapstructure:"chunk_size_bytes"`
}

// WatchConfig configures directory watching
type WatchConfig struct {
	// PollIntervalMS is the poll cadence; zero selects the built-in
	// default
	PollIntervalMS int `mapstructure:"poll_interval_ms"`
}

// PollInterval returns the configured cadence as a duration
func (w WatchConfig) PollInterval() time.Duration {
	return time.Duration(w.PollIntervalMS) * time.Millisecond
}

// LogConfig configures the SDK logger
type LogConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"`
	File   LogFileConfig `mapstructure:"file"`
}

// LogFileConfig configures rotating file output
type LogFileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// Validate checks the configuration is complete and consistent
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("%w: endpoint cannot be empty", ErrConfigInvalid)
	}

	if c.OAuth.Enabled() {
		if !c.OAuth.Complete() {
			return fmt.Errorf("%w: oauth requires token_url, client_id and client_secret", ErrConfigInvalid)
		}
	} else if c.APIKey == "" {
		return fmt.Errorf("%w: either api_key or oauth credentials are required", ErrConfigInvalid)
	}

	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: timeout_seconds cannot be negative", ErrConfigInvalid)
	}
	if c.Transfer.ChunkSizeBytes < 0 {
		return fmt.Errorf("%w: transfer.chunk_size_bytes cannot be negative", ErrConfigInvalid)
	}
	if c.Watch.PollIntervalMS < 0 {
		return fmt.Errorf("%w: watch.poll_interval_ms cannot be negative", ErrConfigInvalid)
	}

	return nil
}

// Timeout returns the configured request timeout, zero meaning default
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoggerConfig converts the log section into the logger package's config
func (c *Config) LoggerConfig() logger.Config {
	cfg := logger.Config{
		Level:   logger.ParseLevel(c.Log.Level),
		Format:  logger.ParseFormat(c.Log.Format),
		Outputs: []logger.OutputConfig{{Type: logger.OutputStderr}},
	}

	if c.Log.File.Enabled {
		cfg.Outputs = append(cfg.Outputs, logger.OutputConfig{Type: logger.OutputFile})
		cfg.File = logger.FileConfig{
			Enabled:    true,
			Path:       c.Log.File.Path,
			MaxSizeMB:  c.Log.File.MaxSizeMB,
			MaxAgeDays: c.Log.File.MaxAgeDays,
			MaxBackups: c.Log.File.MaxBackups,
			Compress:   c.Log.File.Compress,
		}
	}

	return cfg
}
