// Package config loads optional file-based defaults for the CLI. Flags and
// environment variables always win over file values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// AgentURL is the base URL of the agent API.
	AgentURL string `yaml:"agent_url"`

	// AgentAPIKey is sent as the Authorization header, if set.
	AgentAPIKey string `yaml:"agent_api_key"`

	// SystemPromptFile is a file containing the system prompt for new chats.
	SystemPromptFile string `yaml:"system_prompt_file"`

	// SessionsDir is where chat transcripts are saved.
	SessionsDir string `yaml:"sessions_dir"`
}

// DefaultPath returns ~/.secdesk/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".secdesk", "config.yaml"), nil
}

// Load reads the config file at path. ${VAR} references in the file are
// expanded from the environment before parsing.
func Load(path string) (cfg Config, err error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(contents))
	if err = yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads the config file at the default path, returning a zero
// config if none exists.
func LoadDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Config{}, err
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	return cfg, err
}
