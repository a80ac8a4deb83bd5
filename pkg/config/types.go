// Package config provides configuration management for claude-watch.
//
// Configuration is loaded from multiple sources with the following precedence:
// 1. Environment variables (highest priority)
// 2. Configuration file
// 3. Default values (lowest priority)
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Log dirs: %v\n", cfg.LogDirs)
package config

import (
	"time"

	"github.com/efuller/claude-watch/pkg/plans"
)

// Config represents the complete application configuration.
//
// Invariants:
// - LogDirs must have at least one directory
// - RefreshInterval must be within [1s, 60s]
// - Plan must parse as a known plan type
// - Timezone must be a valid IANA zone name (or empty for local time)
// - FixedNow, when set, must be RFC3339.
type Config struct {
	// Usage log directories to scan
	LogDirs []string `yaml:"log_dirs"`

	// Plan settings
	Plan PlanConfig `yaml:"plan"`

	// Refresh settings
	Refresh RefreshConfig `yaml:"refresh"`

	// Display settings
	Display DisplayConfig `yaml:"display"`

	// Storage settings
	Storage StorageConfig `yaml:"storage"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// PlanConfig selects the subscription plan to evaluate limits against.
type PlanConfig struct {
	// Plan name: pro, max5, max20 or custom
	Type string `yaml:"type"`

	// Token limit override for the custom plan; 0 enables P90
	// estimation from history
	CustomTokenLimit int64 `yaml:"custom_token_limit"`
}

// RefreshConfig contains refresh loop settings.
type RefreshConfig struct {
	// Interval between refresh cycles, valid range 1-60s
	Interval time.Duration `yaml:"interval"`

	// Watch enables file-change triggered refreshes on top of the timer
	Watch bool `yaml:"watch"`
}

// DisplayConfig contains display-related settings.
type DisplayConfig struct {
	// IANA timezone for period boundaries; empty means local time
	Timezone string `yaml:"timezone"`

	// FixedNow pins the clock for reproducible output (RFC3339)
	FixedNow string `yaml:"fixed_now"`

	// Enable colored output
	ColorEnabled bool `yaml:"color_enabled"`
}

// StorageConfig contains storage-related settings.
type StorageConfig struct {
	// Path to the BoltDB file holding read offsets
	CachePath string `yaml:"cache_path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level"`

	// Log output destination (stdout, stderr, file path)
	Output string `yaml:"output"`

	// Log format (text, json)
	Format string `yaml:"format"`
}

// Validate checks if the configuration satisfies all invariants.
func (c *Config) Validate() error {
	if len(c.LogDirs) == 0 {
		return ErrNoLogDirs
	}

	if c.Refresh.Interval < time.Second || c.Refresh.Interval > 60*time.Second {
		return ErrInvalidInterval
	}

	if _, err := c.PlanType(); err != nil {
		return err
	}

	if _, err := c.Location(); err != nil {
		return ErrInvalidTimezone
	}

	if c.Display.FixedNow != "" {
		if _, err := time.Parse(time.RFC3339, c.Display.FixedNow); err != nil {
			return ErrInvalidFixedNow
		}
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validFormats[c.Logging.Format] {
		return ErrInvalidLogFormat
	}

	return nil
}

// PlanType parses the configured plan name.
func (c *Config) PlanType() (plans.PlanType, error) {
	return plans.ParsePlanType(c.Plan.Type)
}

// Location resolves the display timezone. Empty means local time.
func (c *Config) Location() (*time.Location, error) {
	if c.Display.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Display.Timezone)
}

// Now returns the clock function implied by the configuration: either
// the pinned instant or the real clock.
func (c *Config) Now() func() time.Time {
	if c.Display.FixedNow == "" {
		return time.Now
	}
	fixed, err := time.Parse(time.RFC3339, c.Display.FixedNow)
	if err != nil {
		return time.Now
	}
	return func() time.Time { return fixed }
}
