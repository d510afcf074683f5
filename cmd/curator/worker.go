package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"content-curator/internal/domain"
	"content-curator/internal/usecase/curation"
)

const (
	maxDeliveryAttempts = 5
	jobDedupTTL         = 24 * time.Hour
)

type runner interface {
	Run(ctx context.Context, job domain.CurationJob) (curation.RunResult, error)
}

type jobWorker struct {
	log     zerolog.Logger
	queue   domain.CurationQueue
	cache   domain.Cache
	service runner
	backoff time.Duration
}

type jobOutcome int

const (
	jobOutcomeCompleted jobOutcome = iota
	jobOutcomeRetry
)

func (w *jobWorker) Run(ctx context.Context) {
	for {
		job, ack, err := w.queue.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("curator: ошибка чтения очереди")
			w.sleep(ctx)
			continue
		}
		w.process(ctx, job, ack)
	}
}

func (w *jobWorker) process(ctx context.Context, job domain.CurationJob, ack domain.AckFunc) {
	jobLog := w.log.With().
		Str("job_id", job.ID).
		Int64("user_id", job.UserID).
		Str("cause", string(job.Cause)).
		Int("attempt", job.Attempt).
		Logger()

	if job.ID == "" || job.UserID <= 0 {
		jobLog.Error().Msg("curator: некорректная задача, подтверждаем и пропускаем")
		if err := ack(true); err != nil {
			jobLog.Error().Err(err).Msg("curator: не удалось подтвердить некорректную задачу")
		}
		return
	}

	outcome := jobOutcomeCompleted
	err := w.cache.Once("curation:job:"+job.ID, jobDedupTTL, func() error {
		outcome = w.handleJob(ctx, job, jobLog)
		if outcome == jobOutcomeRetry {
			return errRetry
		}
		return nil
	})
	if err != nil && !errors.Is(err, errRetry) {
		jobLog.Error().Err(err).Msg("curator: не удалось проверить повторную доставку")
		outcome = jobOutcomeRetry
	}

	if outcome == jobOutcomeRetry && job.Attempt+1 < maxDeliveryAttempts {
		jobLog.Warn().Msg("curator: задача завершилась ошибкой, повторим позже")
		if err := ack(false); err != nil {
			jobLog.Error().Err(err).Msg("curator: не удалось вернуть задачу в очередь")
		}
		return
	}
	if outcome == jobOutcomeRetry {
		jobLog.Error().Msg("curator: достигнут предел попыток, снимаем задачу")
	}
	if err := ack(true); err != nil {
		jobLog.Error().Err(err).Msg("curator: не удалось подтвердить задачу")
	}
}

var errRetry = errors.New("curator: задача требует повтора")

func (w *jobWorker) handleJob(ctx context.Context, job domain.CurationJob, jobLog zerolog.Logger) jobOutcome {
	res, err := w.service.Run(ctx, job)
	switch {
	case err == nil:
		jobLog.Info().
			Int("stored", len(res.Items)).
			Int("suppressed", res.Suppressed).
			Int("duplicates", res.Stats.TotalDuplicates).
			Msg("curator: выдача сохранена")
		return jobOutcomeCompleted
	case errors.Is(err, curation.ErrNoContent):
		return jobOutcomeCompleted
	default:
		jobLog.Error().Err(err).Msg("curator: ошибка прогона")
		return jobOutcomeRetry
	}
}

func (w *jobWorker) sleep(ctx context.Context) {
	d := w.backoff
	if d <= 0 {
		d = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
