// Package config defines the application configuration loaded from
// ~/.agentdeck/config.yaml, environment variables (AGENTDECK_*), and
// CLI flags via viper.
package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	// LogLevel is the logrus level name (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`
	// LogFormat selects the log output format (fmt or json).
	LogFormat string `mapstructure:"log_format"`

	// DBPath overrides the default database location.
	DBPath string `mapstructure:"db_path"`

	// CatalogDirs overrides the default catalog directories.
	CatalogDirs []string `mapstructure:"catalog_dirs"`

	Server  ServerConfig  `mapstructure:"server"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// ServerConfig configures the local API server.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	SamplerType  string  `mapstructure:"sampler"`
	SamplerRatio float64 `mapstructure:"ratio"`
}

// SetDefaults registers default values on the global viper instance.
func SetDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "fmt")
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 7340)
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.sampler", "always")
	viper.SetDefault("tracing.ratio", 0.1)
}

// Load unmarshals the merged configuration.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}
	return &cfg, nil
}
