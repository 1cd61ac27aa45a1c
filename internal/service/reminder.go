package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voro/platform/internal/domain"
	"github.com/voro/platform/internal/repository"
)

// ReminderService queues day-before reminders for upcoming games. The sweep
// window is offset-based rather than calendar-based so a daily run catches
// every game regardless of its exact start minute.
type ReminderService struct {
	pool        *pgxpool.Pool
	games       repository.GameRepository
	outbox      repository.OutboxRepository
	windowStart time.Duration
	windowEnd   time.Duration
	logger      *slog.Logger
}

// NewReminderService creates a ReminderService sweeping games that start
// between windowStart and windowEnd from now.
func NewReminderService(
	pool *pgxpool.Pool,
	games repository.GameRepository,
	outbox repository.OutboxRepository,
	windowStart, windowEnd time.Duration,
	logger *slog.Logger,
) *ReminderService {
	return &ReminderService{
		pool:        pool,
		games:       games,
		outbox:      outbox,
		windowStart: windowStart,
		windowEnd:   windowEnd,
		logger:      logger,
	}
}

// Window returns the sweep bounds, as epoch seconds, for a run at now.
func (s *ReminderService) Window(now time.Time) (int64, int64) {
	return now.Add(s.windowStart).Unix(), now.Add(s.windowEnd).Unix()
}

// SendReminders queues one reminder per participant of every game starting
// inside the window. A failure on one game is logged and the sweep moves on;
// the next daily run will not re-catch it, so failures here are surfaced loud.
func (s *ReminderService) SendReminders(ctx context.Context, now time.Time) (int, error) {
	from, to := s.Window(now)
	upcoming, err := s.games.ListStartingBetween(ctx, s.pool, from, to)
	if err != nil {
		return 0, domain.ErrInternal("list upcoming games", err)
	}

	queued := 0
	for _, game := range upcoming {
		n, err := s.remindGame(ctx, game)
		if err != nil {
			s.logger.Error("reminder sweep failed for game", "game_id", game.ID, "error", err)
			continue
		}
		queued += n
	}

	s.logger.Info("reminder sweep complete", "games", len(upcoming), "reminders", queued)
	return queued, nil
}

func (s *ReminderService) remindGame(ctx context.Context, game domain.UpcomingGame) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	for _, player := range game.Players {
		note, err := domain.NewGameReminderNote(game, player.UserID)
		if err != nil {
			return 0, err
		}
		if err := s.outbox.Insert(ctx, tx, note); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(game.Players), nil
}
