package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voro/platform/internal/infra"
	"github.com/voro/platform/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("notifier failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
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
	logger.Info("notifier connected to postgres")

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	repo := repository.NewOutboxRepository()
	logger.Info("notifier starting",
		"poll_interval", cfg.OutboxPollInterval,
		"batch_size", cfg.OutboxBatchSize,
		"topic", cfg.NotificationsTopic)

	ticker := time.NewTicker(cfg.OutboxPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("notifier shutting down")
			return nil
		case <-ticker.C:
			if err := drain(ctx, pool, repo, producer, cfg, logger); err != nil {
				logger.Error("drain error", "error", err)
			}
		}
	}
}

// drain publishes one batch of pending notifications. Only rows whose publish
// succeeded are marked; a failed row stays queued for the next tick.
func drain(
	ctx context.Context,
	pool *pgxpool.Pool,
	repo repository.OutboxRepository,
	producer *infra.KafkaProducer,
	cfg *infra.Config,
	logger *slog.Logger,
) error {
	drafts, err := repo.FetchUnpublished(ctx, pool, cfg.OutboxBatchSize)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if len(drafts) == 0 {
		return nil
	}

	published := make([]int64, 0, len(drafts))
	for _, d := range drafts {
		err := producer.Publish(ctx, cfg.NotificationsTopic, []byte(d.RecipientID), d.Payload)
		if err != nil {
			logger.Error("publish failed", "event_id", d.EventID, "kind", d.Kind, "error", err)
			continue
		}
		published = append(published, d.SeqID)
	}

	if err := repo.MarkPublished(ctx, pool, published); err != nil {
		return fmt.Errorf("mark published: %w", err)
	}

	logger.Info("notifications dispatched", "published", len(published), "fetched", len(drafts))
	return nil
}
