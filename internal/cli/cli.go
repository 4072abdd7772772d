// Package cli holds the shared plumbing of the missionctl commands: the
// viper session file, the API client factory and table rendering.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"missionhub/internal/client"
)

const (
	DefaultServerURL = "http://localhost:8080"
	configDirName    = ".missionhub"
	configFileName   = "config.yaml"

	KeyServerURL = "server.url"
	KeyUserID    = "user.id"
	KeyUserName  = "user.name"
	KeyUserEmail = "user.email"
	KeyUserRole  = "user.role"
	KeyToken     = "user.token"
	KeyJSON      = "json"
)

// ErrNotLoggedIn is returned by commands that need a session
var ErrNotLoggedIn = errors.New("not logged in: run 'missionctl auth login' first")

// ConfigDir returns ~/.missionhub, or MISSIONHUB_HOME when set
func ConfigDir() (string, error) {
	if dir := os.Getenv("MISSIONHUB_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate home directory: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// ConfigPath returns the session file path
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// InitConfig loads the session file into viper; a missing file is fine
func InitConfig() error {
	viper.SetDefault(KeyServerURL, DefaultServerURL)
	viper.SetEnvPrefix("MISSIONCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	path, err := ConfigPath()
	if err != nil {
		return err
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// SaveConfig writes the current viper state with owner-only permissions
func SaveConfig() (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	_ = os.Chmod(path, 0o600)
	return path, nil
}

// NewClient builds an API client from the session
func NewClient() *client.Client {
	c := client.New(viper.GetString(KeyServerURL))
	c.SetToken(viper.GetString(KeyToken))
	c.SetUserID(viper.GetString(KeyUserID))
	return c
}

// AuthedClient is NewClient that fails without a token
func AuthedClient() (*client.Client, error) {
	c := NewClient()
	if c.Token() == "" {
		return nil, ErrNotLoggedIn
	}
	return c, nil
}

// WantJSON reports whether --json was given
func WantJSON() bool {
	return viper.GetBool(KeyJSON)
}

// PrintJSON writes v indented
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// MaskToken keeps only a short prefix of a token for display
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return strings.Repeat("*", len(token))
	}
	return token[:12] + "..."
}
