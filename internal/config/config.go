// Package config loads VoucherBot configuration from YAML with environment
// overrides. Defaults are always valid so the engine runs without a config
// file at all.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all VoucherBot configuration.
type Config struct {
	// Generator backend for the fallback tier
	LLM LLMConfig `yaml:"llm"`

	// Fallback retry policy
	Fallback FallbackConfig `yaml:"fallback"`

	// Session persistence
	Session SessionConfig `yaml:"session"`

	// HTTP API
	Server ServerConfig `yaml:"server"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the text generation backend.
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, anthropic
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// FallbackConfig configures the Tier 2 retry policy.
type FallbackConfig struct {
	MaxRetries     int    `yaml:"max_retries"`
	AttemptTimeout string `yaml:"attempt_timeout"`
	BackoffBase    string `yaml:"backoff_base"`
}

// SessionConfig configures conversation state persistence.
type SessionConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			Timeout:  "60s",
		},
		Fallback: FallbackConfig{
			MaxRetries:     3,
			AttemptTimeout: "30s",
			BackoffBase:    "1s",
		},
		Session: SessionConfig{
			DatabasePath: "voucherbot.db",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "",
		},
	}
}

// Load reads configuration from path, layering file values over defaults
// and environment overrides over both. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers VOUCHERBOT_* environment variables over the config.
func (c *Config) applyEnv() {
	if v := os.Getenv("VOUCHERBOT_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("VOUCHERBOT_LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("VOUCHERBOT_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("VOUCHERBOT_LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("VOUCHERBOT_FALLBACK_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Fallback.MaxRetries = n
		}
	}
	if v := os.Getenv("VOUCHERBOT_SESSION_DB"); v != "" {
		c.Session.DatabasePath = v
	}
	if v := os.Getenv("VOUCHERBOT_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("VOUCHERBOT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("VOUCHERBOT_LOG_DIR"); v != "" {
		c.Logging.Dir = v
	}
}

// Validate checks the values that would otherwise fail at first use.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "anthropic", "":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.Fallback.MaxRetries < 1 {
		return fmt.Errorf("fallback.max_retries must be at least 1, got %d", c.Fallback.MaxRetries)
	}
	for name, val := range map[string]string{
		"llm.timeout":              c.LLM.Timeout,
		"fallback.attempt_timeout": c.Fallback.AttemptTimeout,
		"fallback.backoff_base":    c.Fallback.BackoffBase,
	} {
		if val == "" {
			continue
		}
		if _, err := time.ParseDuration(val); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}
	return nil
}

// Duration parses a config duration string, returning fallback for empty
// or malformed values.
func Duration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
