package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"rentalassist-backend/internal/config"
	"rentalassist-backend/internal/conversation"
	"rentalassist-backend/internal/database"
	"rentalassist-backend/internal/handlers"
	"rentalassist-backend/internal/id"
	"rentalassist-backend/internal/intent"
	"rentalassist-backend/internal/logger"
	"rentalassist-backend/internal/middleware"
	"rentalassist-backend/internal/repository"
	"rentalassist-backend/internal/router"
	"rentalassist-backend/internal/services"
	"rentalassist-backend/internal/websocket"
	"rentalassist-backend/internal/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	logger.Setup(cfg)
	slog.Info("starting rental assistant", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := id.Init(cfg.NodeID); err != nil {
		return fmt.Errorf("message id node: %w", err)
	}

	// ──── Step 2: Optional Redis ────
	var redisClients *database.RedisClients
	if cfg.RedisURL != "" {
		var err error
		redisClients, err = database.NewRedisClients(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer redisClients.Close()
		slog.Info("redis connected")
	}

	// ──── Step 3: Optional PostgreSQL + migrations ────
	var feedbackRepo *repository.FeedbackRepo
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("postgres connection failed: %w", err)
		}
		defer pool.Close()

		if err := database.RunMigrations(ctx, pool, "migrations"); err != nil {
			return fmt.Errorf("database migration failed: %w", err)
		}
		feedbackRepo = repository.NewFeedbackRepo(pool)
		slog.Info("postgres connected, migrations applied")
	}

	// ──── Step 4: Sessions, events, feedback ────
	sessionAuth := middleware.NewSessionAuth(cfg.SessionSecret, cfg.SessionTokenTTL)

	var feedbackSink conversation.FeedbackSink = services.LogFeedbackSink{}
	var wsHub *websocket.Hub
	var events *services.EventPublisher
	if redisClients != nil {
		feedbackSink = services.NewQueueFeedbackSink(redisClients.Queue)
		wsHub = websocket.NewHub(redisClients.PubSub, sessionAuth)
		events = services.NewEventPublisher(redisClients.Queue, nil)
	} else {
		wsHub = websocket.NewHub(nil, sessionAuth)
		events = services.NewEventPublisher(nil, wsHub)
	}
	defer wsHub.Close()

	assistant := services.NewAssistantService(intent.NewDefault(), services.AssistantOptions{
		MinDelay: cfg.MinThinkingDelay,
		MaxDelay: cfg.MaxThinkingDelay,
		Feedback: feedbackSink,
		Events:   events,
	})
	defer assistant.Close()

	reaper := services.NewSessionReaper(assistant, cfg.SessionIdleTTL)
	reaper.Start()
	defer reaper.Stop()

	// ──── Step 5: Feedback workers ────
	if redisClients != nil && feedbackRepo != nil {
		workerPool := worker.NewPool(redisClients.Queue, feedbackRepo, cfg.FeedbackWorkers)
		workerPool.Start(ctx)
		defer workerPool.Stop()
	} else if redisClients != nil {
		slog.Warn("DATABASE_URL not set; queued feedback will not be drained")
	}

	// ──── Step 6: HTTP server ────
	sessionLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer sessionLimiter.Stop()

	r := router.New(
		sessionAuth,
		sessionLimiter,
		handlers.NewAssistantHandler(assistant, sessionAuth),
		wsHub.HandleWebSocket,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("rental assistant ready", "addr", "http://localhost:"+cfg.Port, "api", "/api/v1/assistant", "ws", "/api/v1/ws")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
