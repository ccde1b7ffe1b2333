package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reefkeep/tankd/internal/config"
	"github.com/reefkeep/tankd/internal/scheduler"
	"github.com/reefkeep/tankd/internal/storage"
	"github.com/reefkeep/tankd/internal/update"
	"github.com/reefkeep/tankd/pkg/logutils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tankd failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	log, closeLog, err := logutils.New(cfg.LogLevel, cfg.LogPath())
	if err != nil {
		return err
	}
	defer closeLog()

	repo, err := storage.OpenSQLite(cfg.DBPath())
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := storage.MigrateUp(repo.DB()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	svc := scheduler.NewService(repo, scheduler.Options{
		PollInterval:   time.Duration(cfg.PollSeconds) * time.Second,
		SnoozeDuration: time.Duration(cfg.SnoozeMinutes) * time.Minute,
		Logger:         log,
	})
	svc.Start()
	defer svc.Stop()

	log.Info().Str("db", cfg.DBPath()).Int("poll_seconds", cfg.PollSeconds).Msg("tankd starting")

	notifier := update.DesktopNotifier(update.NoopDesktopNotifier{})
	if cfg.DesktopNotifications {
		notifier = update.ExecDesktopNotifier{}
	}
	m := update.NewModel(repo, svc, update.ModelOptions{
		DesktopNotifications: cfg.DesktopNotifications,
		Notifier:             notifier,
	})

	program := tea.NewProgram(m)
	if _, err := program.Run(); err != nil {
		return err
	}
	log.Info().Uint64("dropped_events", svc.Dropped()).Msg("tankd stopped")
	return nil
}
