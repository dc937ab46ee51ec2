/*
Package config loads server configuration from a YAML file with sane
defaults, overridable by flags at the call site.

All dates in the system are interpreted in the single configured timezone;
there is no per-employee timezone support.
*/
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all server settings.
type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Auth struct {
		// Enabled turns on bearer-token verification for mutating routes.
		Enabled bool   `yaml:"enabled"`
		Secret  string `yaml:"secret"`
	} `yaml:"auth"`

	// Timezone is the IANA zone applied when bucketing timestamps into
	// calendar days, e.g. "Asia/Kolkata". Defaults to UTC.
	Timezone string `yaml:"timezone"`

	Sync struct {
		MaxAttempts   int           `yaml:"max_attempts"`
		OpTimeout     time.Duration `yaml:"op_timeout"`
		SweepInterval time.Duration `yaml:"sweep_interval"`
	} `yaml:"sync"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	var c Config
	c.Server.Port = 8080
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Database.Path = "./data/hr.db"
	c.Timezone = "UTC"
	c.Sync.MaxAttempts = 3
	c.Sync.OpTimeout = 5 * time.Second
	c.Sync.SweepInterval = time.Minute
	return c
}

// Load reads a YAML config file on top of the defaults. A missing path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Sync.MaxAttempts < 1 {
		return fmt.Errorf("sync max_attempts must be at least 1, got %d", c.Sync.MaxAttempts)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.Auth.Enabled && c.Auth.Secret == "" {
		return fmt.Errorf("auth enabled but no secret configured")
	}
	return nil
}
