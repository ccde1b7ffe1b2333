// Package config handles configuration loading and validation for tankd.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration. Every field has a working
// default; the YAML file and TANKD_* environment overrides are optional.
type Config struct {
	DataDir              string `yaml:"data_dir"`
	DBFile               string `yaml:"db_file"`
	LogLevel             string `yaml:"log_level"`
	LogFile              string `yaml:"log_file"`
	PollSeconds          int    `yaml:"poll_seconds"`
	SnoozeMinutes        int    `yaml:"snooze_minutes"`
	DesktopNotifications bool   `yaml:"desktop_notifications"`
}

func Default() Config {
	return Config{
		DataDir:              defaultDataDir(),
		DBFile:               "tankd.db",
		LogLevel:             "info",
		LogFile:              "tankd.log",
		PollSeconds:          60,
		SnoozeMinutes:        15,
		DesktopNotifications: true,
	}
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist, then applies environment overrides. A malformed file is an
// error; a missing one is not.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultPath is the config file location: $XDG_CONFIG_HOME/tankd/config.yaml.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "tankd", "config.yaml")
}

func defaultDataDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "."
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "tankd")
}

func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBFile)
}

func (c Config) LogPath() string {
	return filepath.Join(c.DataDir, c.LogFile)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("config: data_dir is required")
	}
	if strings.TrimSpace(c.DBFile) == "" {
		return errors.New("config: db_file is required")
	}
	if c.PollSeconds <= 0 {
		return fmt.Errorf("config: poll_seconds must be positive, got %d", c.PollSeconds)
	}
	if c.SnoozeMinutes <= 0 {
		return fmt.Errorf("config: snooze_minutes must be positive, got %d", c.SnoozeMinutes)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("TANKD_DATA_DIR")); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("TANKD_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
	if v, ok := getEnvInt("TANKD_POLL_SECONDS"); ok && v > 0 {
		c.PollSeconds = v
	}
	if v, ok := getEnvInt("TANKD_SNOOZE_MINUTES"); ok && v > 0 {
		c.SnoozeMinutes = v
	}
	if v, ok := getEnvBool("TANKD_DESKTOP_NOTIFICATIONS"); ok {
		c.DesktopNotifications = v
	}
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
