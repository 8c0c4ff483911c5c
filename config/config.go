// Package config reads cookiegrab settings from the environment.
package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Prefix is prepended to every environment variable name.
const Prefix = "COOKIEGRAB"

// Config holds every setting. Empty paths select the platform's standard
// Chrome locations.
type Config struct {
	ExecutablePath string `envconfig:"EXECUTABLE_PATH"`
	UserDataDir    string `envconfig:"USER_DATA_DIR"`
	DefaultProfile string `envconfig:"DEFAULT_PROFILE" default:"Default"`

	LaunchTimeout   time.Duration `envconfig:"LAUNCH_TIMEOUT" default:"30s"`
	CommandTimeout  time.Duration `envconfig:"COMMAND_TIMEOUT" default:"30s"`
	GracefulTimeout time.Duration `envconfig:"GRACEFUL_TIMEOUT" default:"5s"`
	ConnectAttempts int           `envconfig:"CONNECT_ATTEMPTS" default:"3"`

	LogLevel          string `envconfig:"LOG_LEVEL" default:"info"`
	LogCategoryFilter string `envconfig:"LOG_CATEGORY_FILTER"`

	SaveDir string `envconfig:"SAVE_DIR" default:"cookies"`
}

// Load reads the configuration from COOKIEGRAB_* environment variables.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the values that envconfig cannot.
func (c *Config) Validate() error {
	if c.DefaultProfile == "" {
		return fmt.Errorf("%s_DEFAULT_PROFILE must not be empty", Prefix)
	}
	if c.ConnectAttempts < 1 {
		return fmt.Errorf("%s_CONNECT_ATTEMPTS must be at least 1, got %d", Prefix, c.ConnectAttempts)
	}
	for name, d := range map[string]time.Duration{
		"LAUNCH_TIMEOUT":   c.LaunchTimeout,
		"COMMAND_TIMEOUT":  c.CommandTimeout,
		"GRACEFUL_TIMEOUT": c.GracefulTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s_%s must be positive, got %s", Prefix, name, d)
		}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s_LOG_LEVEL: %w", Prefix, err)
	}
	if c.LogCategoryFilter != "" {
		if _, err := regexp.Compile(c.LogCategoryFilter); err != nil {
			return fmt.Errorf("%s_LOG_CATEGORY_FILTER: %w", Prefix, err)
		}
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() logrus.Level {
	l, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return l
}

// CategoryFilter returns the compiled log category filter, or nil to log
// every category.
func (c *Config) CategoryFilter() *regexp.Regexp {
	if c.LogCategoryFilter == "" {
		return nil
	}
	re, err := regexp.Compile(c.LogCategoryFilter)
	if err != nil {
		return nil
	}
	return re
}
