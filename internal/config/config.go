// Package config loads and persists buildsweep's user configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultRetentionDays is how long build events are kept before an artifact
// becomes eligible for automatic cleanup.
const DefaultRetentionDays = 7

// Config is the persistent user configuration. It is loaded once at startup
// and saved on every mutation.
type Config struct {
	ScanPaths        []string `yaml:"scan_paths"`
	ExcludedPaths    []string `yaml:"excluded_paths"`
	RetentionDays    int      `yaml:"retention_days"`
	DatabasePath     string   `yaml:"database_path"`
	AutomaticRemoval bool     `yaml:"automatic_removal"`
	DebugLogs        bool     `yaml:"debug_logs"`
}

// Dir returns the buildsweep data directory (~/.buildsweep).
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".buildsweep"), nil
}

// Default returns the configuration used when no config file exists yet.
func Default() Config {
	dir, err := Dir()
	if err != nil {
		dir = "."
	}
	return Config{
		ScanPaths:        []string{"."},
		ExcludedPaths:    nil,
		RetentionDays:    DefaultRetentionDays,
		DatabasePath:     filepath.Join(dir, "builds.db"),
		AutomaticRemoval: true,
		DebugLogs:        false,
	}
}

func configPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file, falling back to defaults when it is missing or
// unreadable. A missing file is not an error.
func Load() Config {
	path, err := configPath()
	if err != nil {
		return Default()
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) Config {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default()
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}
	if len(cfg.ScanPaths) == 0 {
		cfg.ScanPaths = []string{"."}
	}
	return cfg
}

// Save persists the config, creating the data directory if needed.
func Save(cfg Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo persists the config to an explicit path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
