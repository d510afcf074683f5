package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	CurationRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curation_runs_total",
		Help: "Количество прогонов курирования по статусу",
	}, []string{"status"})

	CurationRunSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "curation_run_seconds",
		Help:    "Длительность прогона курирования",
		Buckets: prometheus.DefBuckets,
	})

	CurationRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curation_records_total",
		Help: "Количество материалов на каждом этапе курирования",
	}, []string{"stage"})

	DuplicatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curation_duplicates_total",
		Help: "Найденные дубликаты по причине",
	}, []string{"reason"})

	CurationJobsEnqueued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curation_jobs_enqueued_total",
		Help: "Поставленные в очередь задачи курирования",
	}, []string{"cause"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// Этапы конвейера для CurationRecordsTotal.
const (
	StageLoaded     = "loaded"
	StageUnique     = "unique"
	StageSuppressed = "suppressed"
	StageScored     = "scored"
	StageStored     = "stored"
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		CurationRunsTotal,
		CurationRunSeconds,
		CurationRecordsTotal,
		DuplicatesTotal,
		CurationJobsEnqueued,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// Handler отдаёт метрики в формате Prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
		cancel()
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveCurationRun фиксирует итог и длительность прогона.
func ObserveCurationRun(status string, duration time.Duration) {
	CurationRunsTotal.WithLabelValues(status).Inc()
	CurationRunSeconds.Observe(duration.Seconds())
}

// AddRecords увеличивает счётчик материалов на этапе.
func AddRecords(stage string, n int) {
	if n <= 0 {
		return
	}
	CurationRecordsTotal.WithLabelValues(stage).Add(float64(n))
}

// AddDuplicates учитывает дубликаты по причинам.
func AddDuplicates(byReason map[string]int) {
	for reason, n := range byReason {
		if n > 0 {
			DuplicatesTotal.WithLabelValues(reason).Add(float64(n))
		}
	}
}

// IncJobEnqueued учитывает поставленную задачу.
func IncJobEnqueued(cause string) {
	CurationJobsEnqueued.WithLabelValues(cause).Inc()
}
