package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voro/platform/internal/infra"
	"github.com/voro/platform/internal/repository"
	"github.com/voro/platform/internal/service"
)

func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger, *once); err != nil {
		logger.Error("reminderd failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, once bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("reminderd connected to postgres")

	reminders := service.NewReminderService(
		pool,
		repository.NewGameRepository(),
		repository.NewOutboxRepository(),
		time.Duration(cfg.ReminderWindowStartHours)*time.Hour,
		time.Duration(cfg.ReminderWindowEndHours)*time.Hour,
		logger,
	)

	if once {
		_, err := reminders.SendReminders(ctx, time.Now().UTC())
		return err
	}

	logger.Info("reminderd starting", "sweep_hour_utc", cfg.ReminderHourUTC)
	for {
		now := time.Now().UTC()
		next := nextSweep(now, cfg.ReminderHourUTC)
		logger.Info("next sweep scheduled", "at", next.Format(time.RFC3339))

		select {
		case <-ctx.Done():
			logger.Info("reminderd shutting down")
			return nil
		case <-time.After(next.Sub(now)):
		}

		if _, err := reminders.SendReminders(ctx, time.Now().UTC()); err != nil {
			logger.Error("reminder sweep failed", "error", err)
		}
	}
}

// nextSweep returns the next occurrence of hour:00 UTC strictly after now.
func nextSweep(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
