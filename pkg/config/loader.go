package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader provides methods for loading configuration from various sources.
type Loader interface {
	// Load loads configuration with the following precedence:
	// 1. Environment variables
	// 2. Configuration file
	// 3. Default values
	//
	// Returns the merged configuration or an error if validation fails.
	Load() (*Config, error)

	// LoadFromFile loads configuration from a specific file.
	LoadFromFile(path string) (*Config, error)
}

// loader implements the Loader interface.
type loader struct {
	configPath string
}

// NewLoader creates a new configuration loader.
//
// If configPath is empty, searches for a config file in:
// 1. ./config.yaml (current directory)
// 2. ~/.config/claude-watch/config.yaml.
func NewLoader(configPath string) Loader {
	return &loader{configPath: configPath}
}

// Load implements Loader.Load.
func (l *loader) Load() (*Config, error) {
	cfg := Default()

	configPath := l.configPath
	if configPath == "" {
		configPath = l.findConfigFile()
	}

	if configPath != "" {
		fileCfg, err := l.LoadFromFile(configPath)
		if err != nil {
			// An explicitly named file must load; a discovered one may not.
			if l.configPath != "" {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
		} else {
			cfg = merge(cfg, fileCfg)
		}
	}

	cfg = applyEnvVars(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFile implements Loader.LoadFromFile.
func (l *loader) LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return &cfg, nil
}

// findConfigFile searches standard locations for a config file.
func (l *loader) findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		defaultConfigPath(),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// merge overlays non-zero file values onto the base configuration.
func merge(base, override *Config) *Config {
	result := *base

	if len(override.LogDirs) > 0 {
		result.LogDirs = override.LogDirs
	}

	if override.Plan.Type != "" {
		result.Plan.Type = override.Plan.Type
	}
	if override.Plan.CustomTokenLimit > 0 {
		result.Plan.CustomTokenLimit = override.Plan.CustomTokenLimit
	}

	if override.Refresh.Interval > 0 {
		result.Refresh.Interval = override.Refresh.Interval
	}
	result.Refresh.Watch = override.Refresh.Watch

	if override.Display.Timezone != "" {
		result.Display.Timezone = override.Display.Timezone
	}
	if override.Display.FixedNow != "" {
		result.Display.FixedNow = override.Display.FixedNow
	}
	result.Display.ColorEnabled = override.Display.ColorEnabled

	if override.Storage.CachePath != "" {
		result.Storage.CachePath = override.Storage.CachePath
	}

	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Output != "" {
		result.Logging.Output = override.Logging.Output
	}
	if override.Logging.Format != "" {
		result.Logging.Format = override.Logging.Format
	}

	return &result
}

// applyEnvVars applies environment variable overrides.
//
// Supported environment variables:
//   - CLAUDE_WATCH_LOG_DIRS: Comma-separated list of log directories
//   - CLAUDE_WATCH_PLAN: Plan name
//   - CLAUDE_WATCH_TOKEN_LIMIT: Custom plan token limit
//   - CLAUDE_WATCH_INTERVAL: Refresh interval (Go duration)
//   - CLAUDE_WATCH_TIMEZONE: IANA timezone name
//   - CLAUDE_WATCH_LOG_LEVEL: Log level
func applyEnvVars(cfg *Config) *Config {
	result := *cfg

	if envDirs := os.Getenv("CLAUDE_WATCH_LOG_DIRS"); envDirs != "" {
		dirs := strings.Split(envDirs, ",")
		for i := range dirs {
			dirs[i] = strings.TrimSpace(dirs[i])
		}
		result.LogDirs = dirs
	}

	if plan := os.Getenv("CLAUDE_WATCH_PLAN"); plan != "" {
		result.Plan.Type = strings.ToLower(plan)
	}

	if limit := os.Getenv("CLAUDE_WATCH_TOKEN_LIMIT"); limit != "" {
		if n, err := strconv.ParseInt(limit, 10, 64); err == nil && n > 0 {
			result.Plan.CustomTokenLimit = n
		}
	}

	if interval := os.Getenv("CLAUDE_WATCH_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			result.Refresh.Interval = d
		}
	}

	if tz := os.Getenv("CLAUDE_WATCH_TIMEZONE"); tz != "" {
		result.Display.Timezone = tz
	}

	if level := os.Getenv("CLAUDE_WATCH_LOG_LEVEL"); level != "" {
		result.Logging.Level = strings.ToLower(level)
	}

	return &result
}

// Load is a convenience function that creates a loader and loads
// configuration from the standard locations.
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// LoadFromFile loads and validates configuration from a specific file.
func LoadFromFile(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// Save writes the configuration to a YAML file.
//
// Creates parent directories if they don't exist. The file is created
// with 0600 permissions.
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
