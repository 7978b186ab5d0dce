// Package config loads the library configuration from defaults,
// environment variables and an optional YAML file.
package config

import (
	"strings"

	"github.com/kestrelmetrics/kestrel/log"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds every configurable value for the library.
type Config struct {
	// LogLevel is the minimum log level: trace|debug|info|warn|error|fatal.
	LogLevel string `mapstructure:"logLevel"`

	// LogCaller enables file:line capture on log events.
	LogCaller bool `mapstructure:"logCaller"`

	// Plugin is the raw plugin section, keyed by plugin type and factory
	// name, decoded per-plugin by the plugin manager.
	Plugin map[string]any `mapstructure:"plugin"`
}

// Load reads configuration from (in decreasing priority):
//  1. environment variables (e.g. KESTREL_LOGLEVEL)
//  2. a YAML file (./configs/kestrel.yaml) if it exists.
//
// It returns a fully populated *Config or an error.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("logLevel", "info")
	v.SetDefault("logCaller", false)

	v.SetEnvPrefix("kestrel")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The file is optional; defaults and env cover the rest.
	v.SetConfigName("kestrel")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "cannot decode config")
	}
	return &cfg, nil
}

// LogCfg converts the configured log settings into a log.LogCfg.
func (c *Config) LogCfg() *log.LogCfg {
	return &log.LogCfg{
		LogLevel:          log.ParseLevel(c.LogLevel),
		ConsoleAppender:   true,
		EnabledCallerInfo: c.LogCaller,
	}
}
