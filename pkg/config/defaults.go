package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/efuller/claude-watch/pkg/plans"
)

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		LogDirs: defaultLogDirs(),
		Plan: PlanConfig{
			Type: string(plans.PlanPro),
		},
		Refresh: RefreshConfig{
			Interval: 3 * time.Second,
			Watch:    true,
		},
		Display: DisplayConfig{
			ColorEnabled: true,
		},
		Storage: StorageConfig{
			CachePath: defaultCachePath(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stderr",
			Format: "text",
		},
	}
}

// defaultLogDirs returns the default Claude Code usage log directories.
//
// Searches in order:
// 1. ~/.claude/projects/ (current default)
// 2. ~/.config/claude/projects/ (XDG layout)
//
// Returns all directories that exist on the filesystem.
func defaultLogDirs() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return []string{"."}
	}

	candidates := []string{
		filepath.Join(homeDir, ".claude", "projects"),
		filepath.Join(homeDir, ".config", "claude", "projects"),
	}

	var dirs []string
	for _, dir := range candidates {
		if _, err := os.Stat(dir); err == nil {
			dirs = append(dirs, dir)
		}
	}

	if len(dirs) == 0 {
		return []string{candidates[0]}
	}
	return dirs
}

// defaultCachePath returns the default read-offset database path.
//
// Returns: ~/.config/claude-watch/offsets.db.
func defaultCachePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./offsets.db"
	}
	return filepath.Join(homeDir, ".config", "claude-watch", "offsets.db")
}

// defaultConfigPath returns the default configuration file path.
//
// Returns: ~/.config/claude-watch/config.yaml.
func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}
	return filepath.Join(homeDir, ".config", "claude-watch", "config.yaml")
}

// defaultLastUsedPath returns where session preferences are remembered.
//
// Returns: ~/.config/claude-watch/lastused.yaml.
func defaultLastUsedPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./lastused.yaml"
	}
	return filepath.Join(homeDir, ".config", "claude-watch", "lastused.yaml")
}
