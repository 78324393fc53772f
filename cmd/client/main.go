package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"zerobin/client/internal/api"
	"zerobin/client/internal/cache"
	"zerobin/client/internal/chat"
	"zerobin/client/internal/config"
	"zerobin/client/internal/handlers"
	"zerobin/client/internal/jobs"
	"zerobin/client/internal/log"
	"zerobin/client/internal/notify"
	"zerobin/client/internal/server"
	"zerobin/client/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	backend := api.NewClient(cfg.Backend, log.Component(logger, "api"))
	toasts := notify.NewCenter()

	var store session.Store
	if redisClient != nil {
		store = session.NewRedisStore(redisClient)
	} else {
		store = session.NewFileStore(cfg.Session.StoragePath)
	}

	sessions := session.NewManager(backend, store, toasts, log.Component(logger, "session"))
	sessions.Hydrate(ctx)

	hub := chat.NewHub(backend, sessions, cfg.Chat.PollInterval, log.Component(logger, "chat"))

	handlerSet := handlers.NewHandlerSet(logger, cfg, backend, sessions, hub, toasts, redisClient)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(sessions, redisClient, log.Component(logger, "jobs"))
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, hub, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, hub *chat.Hub, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()
	hub.Shutdown()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("client gateway exited cleanly")
}
