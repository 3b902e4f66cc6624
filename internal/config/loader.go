package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".focusfeed"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile reads a YAML configuration file. A missing file yields
// ErrConfigNotFound; whether that matters depends on whether the user named
// the file explicitly.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// FindConfigFile returns configPath if it exists, otherwise the first
// .focusfeed found in the current directory, then the home directory.
// It returns "" when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		local := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(local); err == nil {
			return local
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		global := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(global); err == nil {
			return global
		}
	}

	return ""
}
