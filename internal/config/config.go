// Package config loads engine and CLI settings from a TOML file with
// MULTIBUF_-prefixed environment variable overrides. A missing config
// file is not an error; defaults apply.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the tunable settings.
type Config struct {
	// Padding is the default context padding for excerpts that request
	// none.
	Padding PaddingConfig `toml:"padding"`

	// EventBuffer is the capacity of event channels.
	EventBuffer int `toml:"event_buffer"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// PaddingConfig is the default context padding in lines.
type PaddingConfig struct {
	Before uint32 `toml:"before"`
	After  uint32 `toml:"after"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		EventBuffer: 64,
		LogLevel:    "info",
	}
}

// Load reads the TOML file at path, falling back to defaults when the
// file does not exist, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing file, defaults apply.
		case err != nil:
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

// applyEnv overrides settings from MULTIBUF_* environment variables.
func (c *Config) applyEnv() error {
	for env, apply := range map[string]func(string) error{
		"MULTIBUF_PADDING_BEFORE": func(v string) error { return parseUint32(v, &c.Padding.Before) },
		"MULTIBUF_PADDING_AFTER":  func(v string) error { return parseUint32(v, &c.Padding.After) },
		"MULTIBUF_EVENT_BUFFER":   func(v string) error { return parseInt(v, &c.EventBuffer) },
		"MULTIBUF_LOG_LEVEL": func(v string) error {
			c.LogLevel = v
			return nil
		},
	} {
		val, ok := os.LookupEnv(env)
		if !ok {
			continue
		}
		if err := apply(val); err != nil {
			return fmt.Errorf("invalid %s=%q: %w", env, val, err)
		}
	}
	return nil
}

func (c Config) validate() error {
	if c.EventBuffer < 1 {
		return fmt.Errorf("event_buffer must be positive, got %d", c.EventBuffer)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured log level. Call after Load; the
// level has already been validated.
func (c Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

func parseUint32(s string, dst *uint32) error {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return err
	}
	*dst = uint32(v)
	return nil
}

func parseInt(s string, dst *int) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
