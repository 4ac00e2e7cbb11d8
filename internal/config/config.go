// Package config loads the taskdeck.yml server configuration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level taskdeck.yml configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Cascade  CascadeConfig  `yaml:"cascade,omitempty"`
}

// ServerConfig specifies the HTTP listener
type ServerConfig struct {
	Addr string `yaml:"addr"` // Default: ":8080"
	// RateLimit is requests per second allowed per client, with a burst
	// of twice the rate. 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit,omitempty"`
}

// DatabaseConfig specifies the SQLite backing store
type DatabaseConfig struct {
	Path string `yaml:"path"` // Default: "taskdeck.db"
}

// AuthConfig specifies session token parameters.
// The secret may also come from the TASKDECK_AUTH_SECRET environment
// variable, which takes precedence over the file.
type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl,omitempty"` // Default: 720h
}

// CascadeConfig specifies subtask completion cascade behavior
type CascadeConfig struct {
	// Policy is "forward_only" (default) or "bidirectional"
	Policy string `yaml:"policy,omitempty"`
}

// Default returns a config with sensible defaults
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080", RateLimit: 50},
		Database: DatabaseConfig{Path: "taskdeck.db"},
		Auth:     AuthConfig{TokenTTL: 720 * time.Hour},
		Cascade:  CascadeConfig{Policy: "forward_only"},
	}
}

// Load reads and validates a config file. A missing path yields the
// defaults (plus the env secret) rather than an error, so `taskdeck serve`
// works out of the box.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return applyEnv(cfg)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return applyEnv(cfg)
}

func applyEnv(cfg *Config) (*Config, error) {
	if secret := os.Getenv("TASKDECK_AUTH_SECRET"); secret != "" {
		cfg.Auth.Secret = secret
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "taskdeck.db"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 720 * time.Hour
	}
	switch c.Cascade.Policy {
	case "", "forward_only", "bidirectional":
	default:
		return fmt.Errorf("invalid cascade policy: %s", c.Cascade.Policy)
	}
	return nil
}
