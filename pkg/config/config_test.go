package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func valid() *Config {
	cfg := Default()
	cfg.LogDirs = []string{"/tmp/logs"}
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.LogDirs) == 0 {
		t.Error("Default() has no log dirs")
	}
	if cfg.Plan.Type != "pro" {
		t.Errorf("default plan = %s, want pro", cfg.Plan.Type)
	}
	if cfg.Refresh.Interval != 3*time.Second {
		t.Errorf("default interval = %v, want 3s", cfg.Refresh.Interval)
	}
	if err := valid().Validate(); err != nil {
		t.Errorf("default config with log dirs fails validation: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"no log dirs", func(c *Config) { c.LogDirs = nil }, ErrNoLogDirs},
		{"interval too small", func(c *Config) { c.Refresh.Interval = 500 * time.Millisecond }, ErrInvalidInterval},
		{"interval too large", func(c *Config) { c.Refresh.Interval = 2 * time.Minute }, ErrInvalidInterval},
		{"interval at lower bound", func(c *Config) { c.Refresh.Interval = time.Second }, nil},
		{"interval at upper bound", func(c *Config) { c.Refresh.Interval = 60 * time.Second }, nil},
		{"bad timezone", func(c *Config) { c.Display.Timezone = "Mars/Olympus" }, ErrInvalidTimezone},
		{"good timezone", func(c *Config) { c.Display.Timezone = "Europe/Berlin" }, nil},
		{"bad fixed now", func(c *Config) { c.Display.FixedNow = "yesterday" }, ErrInvalidFixedNow},
		{"good fixed now", func(c *Config) { c.Display.FixedNow = "2024-03-01T10:00:00Z" }, nil},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, ErrInvalidLogLevel},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateBadPlan(t *testing.T) {
	cfg := valid()
	cfg.Plan.Type = "enterprise"

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted an unknown plan")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log_dirs:
  - /data/claude/projects
plan:
  type: max5
refresh:
  interval: 5s
  watch: true
display:
  timezone: UTC
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Plan.Type != "max5" {
		t.Errorf("plan = %s, want max5", cfg.Plan.Type)
	}
	if cfg.Refresh.Interval != 5*time.Second {
		t.Errorf("interval = %v, want 5s", cfg.Refresh.Interval)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %s, want debug", cfg.Logging.Level)
	}
	// Unset fields keep their defaults.
	if cfg.Logging.Format != "text" {
		t.Errorf("log format = %s, want default text", cfg.Logging.Format)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadFromFile() error = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_dirs: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromFile(path)
	if !errors.Is(err, ErrInvalidYAML) {
		t.Errorf("LoadFromFile() error = %v, want ErrInvalidYAML", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CLAUDE_WATCH_LOG_DIRS", "/a, /b")
	t.Setenv("CLAUDE_WATCH_PLAN", "MAX20")
	t.Setenv("CLAUDE_WATCH_TOKEN_LIMIT", "50000")
	t.Setenv("CLAUDE_WATCH_INTERVAL", "10s")
	t.Setenv("CLAUDE_WATCH_TIMEZONE", "UTC")
	t.Setenv("CLAUDE_WATCH_LOG_LEVEL", "DEBUG")

	cfg := applyEnvVars(valid())

	if len(cfg.LogDirs) != 2 || cfg.LogDirs[0] != "/a" || cfg.LogDirs[1] != "/b" {
		t.Errorf("LogDirs = %v, want [/a /b]", cfg.LogDirs)
	}
	if cfg.Plan.Type != "max20" {
		t.Errorf("plan = %s, want max20", cfg.Plan.Type)
	}
	if cfg.Plan.CustomTokenLimit != 50000 {
		t.Errorf("custom limit = %d, want 50000", cfg.Plan.CustomTokenLimit)
	}
	if cfg.Refresh.Interval != 10*time.Second {
		t.Errorf("interval = %v, want 10s", cfg.Refresh.Interval)
	}
	if cfg.Display.Timezone != "UTC" {
		t.Errorf("timezone = %s, want UTC", cfg.Display.Timezone)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %s, want debug", cfg.Logging.Level)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := valid()
	cfg.Plan.Type = "custom"
	cfg.Plan.CustomTokenLimit = 77_000

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Plan.Type != "custom" || loaded.Plan.CustomTokenLimit != 77_000 {
		t.Errorf("round trip lost plan settings: %+v", loaded.Plan)
	}
}

func TestLastUsed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lastused.yaml")

	saved := valid()
	saved.Plan.Type = "max5"
	saved.Refresh.Interval = 7 * time.Second
	saved.Display.Timezone = "UTC"

	if err := SaveLastUsed(saved, path); err != nil {
		t.Fatalf("SaveLastUsed() error = %v", err)
	}

	// A fresh default config picks the remembered values up.
	got := ApplyLastUsed(valid(), path)
	if got.Plan.Type != "max5" {
		t.Errorf("plan = %s, want remembered max5", got.Plan.Type)
	}
	if got.Refresh.Interval != 7*time.Second {
		t.Errorf("interval = %v, want remembered 7s", got.Refresh.Interval)
	}
	if got.Display.Timezone != "UTC" {
		t.Errorf("timezone = %s, want remembered UTC", got.Display.Timezone)
	}

	// Explicit settings are not overridden.
	explicit := valid()
	explicit.Plan.Type = "max20"
	got = ApplyLastUsed(explicit, path)
	if got.Plan.Type != "max20" {
		t.Errorf("plan = %s, want explicit max20", got.Plan.Type)
	}
}

func TestApplyLastUsedMissingFile(t *testing.T) {
	cfg := valid()
	got := ApplyLastUsed(cfg, filepath.Join(t.TempDir(), "nope.yaml"))
	if got.Plan.Type != cfg.Plan.Type {
		t.Error("missing preferences file changed the configuration")
	}
}
