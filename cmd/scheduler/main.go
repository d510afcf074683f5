package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"content-curator/internal/adapters/repo"
	"content-curator/internal/infra/config"
	"content-curator/internal/infra/db"
	applog "content-curator/internal/infra/log"
	"content-curator/internal/infra/metrics"
	"content-curator/internal/infra/queue"
	"content-curator/internal/usecase/schedule"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler: нет подключения к БД")
	}
	defer pool.Close()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
	}
	jobs, closeQueue, err := queue.Open(cfg.Queues.Backend, rdb, cfg.RabbitMQURL, cfg.Queues.Curation)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Queues.Backend).Msg("scheduler: не удалось инициализировать очередь")
	}
	defer func() { _ = closeQueue() }()

	svc := schedule.NewService(repo.NewPostgres(pool), jobs, applog.Component(logger, "scheduler"))
	logger.Info().Dur("interval", cfg.Curation.Interval).Msg("scheduler: старт")
	svc.Loop(ctx, cfg.Curation.Interval)
	logger.Info().Msg("scheduler: остановлен")
}
