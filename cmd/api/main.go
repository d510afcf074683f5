package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"content-curator/internal/infra/config"
	httpinfra "content-curator/internal/infra/http"
	applog "content-curator/internal/infra/log"
	"content-curator/internal/infra/metrics"
	"content-curator/internal/infra/queue"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
	}
	jobs, closeQueue, err := queue.Open(cfg.Queues.Backend, rdb, cfg.RabbitMQURL, cfg.Queues.Curation)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Queues.Backend).Msg("api: не удалось инициализировать очередь")
	}
	defer func() { _ = closeQueue() }()

	srv := httpinfra.NewServer(applog.Component(logger, "http"))
	httpinfra.NewRunsHandler(jobs, applog.Component(logger, "api")).Mount(srv)

	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logger.Error().Err(err).Msg("api: сервер остановлен")
			stop()
		}
	}()
	<-ctx.Done()
	logger.Info().Msg("api: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: ошибка остановки")
	}
}
