// Package config loads the shield client configuration from
// .shield/config.yaml with environment variable overrides. The config file
// is optional; every field has a usable default.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values used when the config file and environment are silent.
const (
	DefaultBackendURL   = "http://localhost:8000"
	DefaultContractType = "general"
	DefaultTimeout      = 60 * time.Second
	DefaultTheme        = "auto"
)

// Config holds the client configuration.
type Config struct {
	// BackendURL is the analysis backend address.
	BackendURL string `yaml:"backend_url"`

	// UserID is the opaque identity string sent with every request. It comes
	// from an external identity provider; the client only forwards it.
	UserID string `yaml:"user_id"`

	// UserName is the display name sent with uploads.
	UserName string `yaml:"user_name"`

	// DefaultContractType preselects the contract type in the upload view.
	DefaultContractType string `yaml:"default_contract_type"`

	// Theme is "auto", "light", or "dark".
	Theme string `yaml:"theme"`

	// TimeoutSeconds is the HTTP transport timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// DebugMode enables categorized file logging under .shield/logs/.
	DebugMode bool `yaml:"debug_mode"`

	// ShowEmptySections controls whether the analysis view renders section
	// headers with a zero count for empty clause/negotiation lists, or omits
	// the sections entirely.
	ShowEmptySections bool `yaml:"show_empty_sections"`
}

// Path returns the config file location for a workspace.
func Path(workspace string) string {
	return filepath.Join(workspace, ".shield", "config.yaml")
}

// Default returns a config with all defaults applied.
func Default() *Config {
	return &Config{
		BackendURL:          DefaultBackendURL,
		DefaultContractType: DefaultContractType,
		Theme:               DefaultTheme,
		TimeoutSeconds:      int(DefaultTimeout.Seconds()),
		ShowEmptySections:   true,
	}
}

// Load reads the workspace config file, fills defaults, and applies
// environment overrides. A missing file is not an error.
func Load(workspace string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config back to the workspace file, creating .shield/ if
// needed.
func (c *Config) Save(workspace string) error {
	path := Path(workspace)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Timeout returns the HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *Config) applyDefaults() {
	if c.BackendURL == "" {
		c.BackendURL = DefaultBackendURL
	}
	if c.DefaultContractType == "" {
		c.DefaultContractType = DefaultContractType
	}
	if c.Theme == "" {
		c.Theme = DefaultTheme
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = int(DefaultTimeout.Seconds())
	}
}

// Environment variables override file values. SHIELD_BACKEND_URL is the one
// most commonly set, for pointing the client at a non-local backend.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SHIELD_BACKEND_URL"); v != "" {
		c.BackendURL = v
	}
	if v := os.Getenv("SHIELD_USER_ID"); v != "" {
		c.UserID = v
	}
	if v := os.Getenv("SHIELD_USER_NAME"); v != "" {
		c.UserName = v
	}
	if v := os.Getenv("SHIELD_CONTRACT_TYPE"); v != "" {
		c.DefaultContractType = v
	}
	if v := os.Getenv("SHIELD_THEME"); v != "" {
		c.Theme = v
	}
	if v := os.Getenv("SHIELD_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("SHIELD_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.DebugMode = b
		}
	}
}
