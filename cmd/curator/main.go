package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"content-curator/internal/adapters/dedup"
	"content-curator/internal/adapters/ranker"
	"content-curator/internal/adapters/repo"
	"content-curator/internal/infra/cache"
	"content-curator/internal/infra/config"
	"content-curator/internal/infra/db"
	applog "content-curator/internal/infra/log"
	"content-curator/internal/infra/metrics"
	"content-curator/internal/infra/queue"
	"content-curator/internal/usecase/curation"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, applog.Component(logger, "metrics"), cfg.MetricsAddr)

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("curator: нет подключения к БД")
	}
	defer pool.Close()

	if cfg.RedisAddr == "" {
		logger.Fatal().Msg("curator: не указан адрес Redis (REDIS_ADDR)")
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	jobs, closeQueue, err := queue.Open(cfg.Queues.Backend, rdb, cfg.RabbitMQURL, cfg.Queues.Curation)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Queues.Backend).Msg("curator: не удалось инициализировать очередь")
	}
	defer func() {
		if err := closeQueue(); err != nil {
			logger.Error().Err(err).Msg("curator: ошибка закрытия очереди")
		}
	}()

	repoAdapter := repo.NewPostgres(pool)
	redisCache := cache.NewRedis(rdb)
	service := curation.NewService(
		repoAdapter,
		repoAdapter,
		repoAdapter,
		dedup.New(cfg.DedupOptions()),
		ranker.New(cfg.Curation.MaxAgeHours),
		redisCache,
		curation.Options{
			MaxItems: cfg.Curation.MaxItems,
			MinScore: cfg.Curation.MinScore,
			Window:   cfg.Curation.Window,
			Weights:  cfg.WeightOverrides(),
		},
		logger,
	)

	worker := &jobWorker{
		log:     applog.Component(logger, "curator"),
		queue:   jobs,
		cache:   redisCache,
		service: service,
	}

	logger.Info().Str("backend", cfg.Queues.Backend).Msg("curator: запуск обработки очереди")
	worker.Run(ctx)
	logger.Info().Msg("curator: остановлен")
}
