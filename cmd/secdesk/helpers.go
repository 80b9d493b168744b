package main

import (
	"fmt"
	"os"

	"github.com/secdesk/secdesk/config"
)

const defaultAgentURL = "http://localhost:8000"

// loadConfig reads the config file named by the flag, or the default config
// file if the flag is empty (tolerating its absence).
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.LoadDefault()
	}
	return config.Load(path)
}

// firstNonEmpty returns the first non-empty value, so that flags and
// environment variables override config file values, which override
// defaults.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func readFileOrDefault(filename, defaultContent string) (string, error) {
	if filename == "" {
		return defaultContent, nil
	}
	contents, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return string(contents), nil
}
