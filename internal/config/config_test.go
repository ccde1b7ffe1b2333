package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.PollSeconds != 60 || cfg.SnoozeMinutes != 15 || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "data_dir: /tmp/tankd-test\npoll_seconds: 30\nsnooze_minutes: 5\ndesktop_notifications: false\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/tankd-test" || cfg.PollSeconds != 30 || cfg.SnoozeMinutes != 5 {
		t.Fatalf("yaml values not applied: %#v", cfg)
	}
	if cfg.DesktopNotifications {
		t.Fatal("expected desktop notifications disabled")
	}
	if cfg.DBPath() != filepath.Join("/tmp/tankd-test", "tankd.db") {
		t.Fatalf("unexpected db path: %s", cfg.DBPath())
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("poll_seconds: [oops\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TANKD_POLL_SECONDS", "15")
	t.Setenv("TANKD_LOG_LEVEL", "debug")
	t.Setenv("TANKD_DESKTOP_NOTIFICATIONS", "off")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PollSeconds != 15 || cfg.LogLevel != "debug" || cfg.DesktopNotifications {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.PollSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero poll interval")
	}

	cfg = Default()
	cfg.DataDir = " "
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for blank data dir")
	}
}
