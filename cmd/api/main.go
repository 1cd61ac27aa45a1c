package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/voro/platform/internal/guard"
	"github.com/voro/platform/internal/handler"
	"github.com/voro/platform/internal/infra"
	"github.com/voro/platform/internal/repository"
	"github.com/voro/platform/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
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

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	// Repositories
	userRepo := repository.NewUserRepository()
	gameRepo := repository.NewGameRepository()
	participantRepo := repository.NewParticipantRepository()
	waitlistRepo := repository.NewWaitlistRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Services
	userSvc := service.NewUserService(pool, userRepo, gameRepo, participantRepo, waitlistRepo, logger)
	gameSvc := service.NewGameService(pool, gameRepo, participantRepo, waitlistRepo, userRepo, outboxRepo, logger)

	// Handlers
	userHandler := handler.NewUserHandler(userSvc)
	gameHandler := handler.NewGameHandler(gameSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS)
	r.Use(handler.JSONContentType)
	r.Use(handler.Throttle(guard.NewRateLimiter(120, time.Minute)))

	r.Get("/health", handler.HealthHandler(pool))

	r.Route("/users", func(r chi.Router) {
		r.Post("/", userHandler.Register)
		r.Get("/{id}", userHandler.GetUser)
		r.Patch("/{id}/skill", userHandler.SetSkill)
		r.Patch("/{id}/display-name", userHandler.SetDisplayName)
		r.Patch("/{id}/bio", userHandler.SetBio)
		r.Delete("/{id}", userHandler.DeleteUser)
		r.Get("/{id}/games", gameHandler.ListUserGames)
	})

	r.Route("/games", func(r chi.Router) {
		r.Post("/", gameHandler.CreateGame)
		r.Get("/", gameHandler.ListOpenGames)
		r.Get("/{id}", gameHandler.GetGame)
		r.Delete("/{id}", gameHandler.CancelGame)
		r.Patch("/{id}/group-chat", gameHandler.SetGroupChat)
		r.Post("/{id}/waitlist", gameHandler.JoinWaitlist)
		r.Get("/{id}/waitlist", gameHandler.PendingWaitlist)
		r.Post("/{id}/waitlist/{userID}/approve", gameHandler.ApproveWaitlist)
		r.Post("/{id}/waitlist/{userID}/reject", gameHandler.RejectWaitlist)
		r.Delete("/{id}/players/{userID}", gameHandler.LeaveGame)
	})

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("api server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
