// Package config handles TOML-based configuration loading and validation.
// Settings only affect presentation and request headers; the method, URL and
// body always come from the command line.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds all application configuration.
type Config struct {
	UserAgent    string `toml:"user_agent"`
	Color        string `toml:"color"`
	Debug        bool   `toml:"debug"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// Default returns the default configuration for the given build version.
func Default(version string) *Config {
	return &Config{
		UserAgent:    "curl-go/" + version,
		Color:        ColorAuto,
		Debug:        false,
		MaxBodyBytes: 0,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "curl"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "curl"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at path (or the default location when path is
// empty) and merges it over the defaults. A missing default file is not an
// error; a missing explicit path is.
func Load(path, version string) (*Config, error) {
	cfg := Default(version)

	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Color) {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unsupported color mode %q (valid: auto, always, never)", c.Color)
	}

	if strings.ContainsAny(c.UserAgent, "\r\n") {
		return fmt.Errorf("user agent cannot contain line breaks")
	}

	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes cannot be negative, got %d", c.MaxBodyBytes)
	}

	return nil
}
