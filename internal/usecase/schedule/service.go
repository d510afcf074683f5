package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"content-curator/internal/domain"
	"content-curator/internal/infra/metrics"
)

// Service ставит плановые прогоны курирования в очередь.
type Service struct {
	profiles domain.ProfileRepo
	queue    domain.CurationQueue
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string
}

// NewService создаёт сервис.
func NewService(profiles domain.ProfileRepo, queue domain.CurationQueue, logger zerolog.Logger) *Service {
	return &Service{
		profiles: profiles,
		queue:    queue,
		log:      logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// EnqueueAll ставит задачу для каждого пользователя с включённым курированием.
// Ошибка постановки одной задачи не прерывает остальные.
func (s *Service) EnqueueAll(ctx context.Context) (int, error) {
	users, err := s.profiles.ListCurationUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("выборка пользователей: %w", err)
	}
	requestedAt := s.now().UTC()
	enqueued := 0
	var errs []error
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return enqueued, err
		}
		job := domain.CurationJob{
			ID:          s.newID(),
			UserID:      userID,
			RequestedAt: requestedAt,
			Cause:       domain.CurationCauseScheduled,
		}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			s.log.Error().Err(err).Int64("user_id", userID).Msg("scheduler: не удалось поставить задачу")
			errs = append(errs, fmt.Errorf("пользователь %d: %w", userID, err))
			continue
		}
		metrics.IncJobEnqueued(string(job.Cause))
		enqueued++
	}
	return enqueued, errors.Join(errs...)
}

// Loop вызывает EnqueueAll сразу и затем с заданным интервалом до отмены ctx.
func (s *Service) Loop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		n, err := s.EnqueueAll(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error().Err(err).Msg("scheduler: ошибка планирования")
		}
		s.log.Info().Int("enqueued", n).Msg("scheduler: задачи поставлены")
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
