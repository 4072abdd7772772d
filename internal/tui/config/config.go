// Package config reads the session file shared with missionctl so a login
// from either client carries over to the other.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"missionhub/internal/cli"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	User   UserConfig   `yaml:"user"`
	UI     UIConfig     `yaml:"ui"`
}

type ServerConfig struct {
	URL string `yaml:"url"`
}

type UserConfig struct {
	ID    string `yaml:"id,omitempty"`
	Name  string `yaml:"name,omitempty"`
	Email string `yaml:"email,omitempty"`
	Role  string `yaml:"role,omitempty"`
	Token string `yaml:"token,omitempty"`
}

type UIConfig struct {
	FeedLimit int `yaml:"feed_limit"`
	PageSize  int `yaml:"page_size"`
	// ReconnectSeconds is the wait before the live stream is redialled
	ReconnectSeconds int `yaml:"reconnect_seconds"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{URL: cli.DefaultServerURL},
		UI: UIConfig{
			FeedLimit:        20,
			PageSize:         15,
			ReconnectSeconds: 5,
		},
	}
}

// Load reads path, or the shared session file when path is empty. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := cli.ConfigPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Server.URL == "" {
		c.Server.URL = d.Server.URL
	}
	if c.UI.FeedLimit <= 0 {
		c.UI.FeedLimit = d.UI.FeedLimit
	}
	if c.UI.PageSize <= 0 {
		c.UI.PageSize = d.UI.PageSize
	}
	if c.UI.ReconnectSeconds <= 0 {
		c.UI.ReconnectSeconds = d.UI.ReconnectSeconds
	}
}

// Save writes the config with owner-only permissions
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LoggedIn reports whether a saved token is present
func (c *Config) LoggedIn() bool {
	return c.User.Token != ""
}
