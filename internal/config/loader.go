package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config errors
var (
	// ErrConfigNotFound indicates no config file was found
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates the config file is malformed or
	// inconsistent
	ErrConfigInvalid = errors.New("invalid config")
)

// envPrefix namespaces the environment variables the loader reads,
// e.g. SANDGRID_API_KEY, SANDGRID_ENDPOINT
const envPrefix = "SANDGRID"

// DefaultConfigPaths returns the default search paths for config files
func DefaultConfigPaths() []string {
	paths := []string{
		".",
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "sandgrid"))
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "sandgrid"))
		paths = append(paths, filepath.Join(homeDir, ".sandgrid"))
	}

	return paths
}

// Load reads and parses a configuration file.
// If path is empty, searches the default locations for sandgrid.yaml.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sandgrid")
		v.SetConfigType("yaml")
		for _, p := range DefaultConfigPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	return unmarshal(v)
}

// LoadFromString parses configuration from a YAML string (tests)
func LoadFromString(yamlContent string) (*Config, error) {
	v := newViper()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(strings.NewReader(yamlContent)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	return unmarshal(v)
}

// newViper creates a viper instance with env binding and defaults
func newViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
