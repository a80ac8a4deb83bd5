package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// LastUsed remembers the preferences of the previous run so a bare
// invocation picks up where the user left off.
type LastUsed struct {
	// Plan is the last selected plan name.
	Plan string `yaml:"plan"`

	// Interval is the last refresh interval.
	Interval time.Duration `yaml:"interval"`

	// Timezone is the last display timezone.
	Timezone string `yaml:"timezone"`

	// UpdatedAt is when the preferences were saved.
	UpdatedAt time.Time `yaml:"updated_at"`
}

// SaveLastUsed persists the current session preferences.
//
// An empty path uses the default location.
func SaveLastUsed(cfg *Config, path string) error {
	if path == "" {
		path = defaultLastUsedPath()
	}

	lu := LastUsed{
		Plan:      cfg.Plan.Type,
		Interval:  cfg.Refresh.Interval,
		Timezone:  cfg.Display.Timezone,
		UpdatedAt: time.Now(),
	}

	data, err := yaml.Marshal(&lu)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}

	return nil
}

// ApplyLastUsed overlays remembered preferences onto cfg, skipping any
// field the current configuration already sets explicitly via file or
// environment. Missing or unreadable preference files are ignored.
//
// An empty path uses the default location.
func ApplyLastUsed(cfg *Config, path string) *Config {
	if path == "" {
		path = defaultLastUsedPath()
	}

	data, err := os.ReadFile(path) // nolint:gosec
	if err != nil {
		return cfg
	}

	var lu LastUsed
	if err := yaml.Unmarshal(data, &lu); err != nil {
		return cfg
	}

	result := *cfg
	defaults := Default()

	if lu.Plan != "" && result.Plan.Type == defaults.Plan.Type {
		result.Plan.Type = lu.Plan
	}
	if lu.Interval > 0 && result.Refresh.Interval == defaults.Refresh.Interval {
		result.Refresh.Interval = lu.Interval
	}
	if lu.Timezone != "" && result.Display.Timezone == "" {
		result.Display.Timezone = lu.Timezone
	}

	return &result
}
