package curation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"content-curator/internal/adapters/dedup"
	"content-curator/internal/adapters/ranker"
	"content-curator/internal/domain"
	"content-curator/internal/infra/metrics"
)

// ErrNoContent возвращается, если после фильтрации в выдаче ничего не осталось.
// Это штатный исход прогона, а не сбой.
var ErrNoContent = errors.New("нет материалов для выдачи")

const profileCacheTTL = 10 * time.Minute

// Options задаёт параметры прогона.
type Options struct {
	MaxItems int
	MinScore float64
	Window   time.Duration
	Weights  domain.WeightOverrides
}

// RunResult описывает итог прогона курирования.
type RunResult struct {
	Stats      domain.DeduplicationStats
	Suppressed int
	Items      []domain.ScoredItem
}

// Service собирает выдачу: дедупликация, отсев ранее показанного,
// ранжирование и сохранение.
type Service struct {
	profiles domain.ProfileRepo
	content  domain.ContentSource
	curated  domain.CuratedRepo
	dedup    domain.Deduplicator
	ranker   domain.Ranker
	cache    domain.Cache
	opts     Options
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService создаёт сервис курирования. cache может быть nil.
func NewService(profiles domain.ProfileRepo, content domain.ContentSource, curated domain.CuratedRepo, deduplicator domain.Deduplicator, rk domain.Ranker, cache domain.Cache, opts Options, logger zerolog.Logger) *Service {
	if opts.Window <= 0 {
		opts.Window = 24 * time.Hour
	}
	return &Service{
		profiles: profiles,
		content:  content,
		curated:  curated,
		dedup:    deduplicator,
		ranker:   rk,
		cache:    cache,
		opts:     opts,
		logger:   logger.With().Str("component", "curation").Logger(),
		now:      time.Now,
	}
}

// Run выполняет один прогон для пользователя из задачи.
func (s *Service) Run(ctx context.Context, job domain.CurationJob) (result RunResult, err error) {
	startedAt := s.now().UTC()
	logger := s.logger.With().Str("job_id", job.ID).Int64("user_id", job.UserID).Logger()
	defer func() {
		status := "success"
		switch {
		case errors.Is(err, ErrNoContent):
			status = "empty"
		case err != nil:
			status = "error"
		}
		metrics.ObserveCurationRun(status, s.now().Sub(startedAt))
	}()

	profile, err := s.loadProfile(ctx, job.UserID)
	if err != nil {
		return RunResult{}, fmt.Errorf("загрузка профиля: %w", err)
	}

	records, err := s.content.ListPendingContent(ctx, job.UserID, startedAt.Add(-s.opts.Window))
	if err != nil {
		return RunResult{}, fmt.Errorf("получение материалов: %w", err)
	}
	metrics.AddRecords(metrics.StageLoaded, len(records))

	dd := s.dedup.Deduplicate(records)
	stats := dedup.Stats(dd)
	result.Stats = stats
	metrics.AddRecords(metrics.StageUnique, stats.TotalUnique)
	metrics.AddDuplicates(stats.DuplicatesByReason)
	logger.Info().
		Int("total", stats.TotalOriginal).
		Int("unique", stats.TotalUnique).
		Int("duplicates", stats.TotalDuplicates).
		Float64("rate", stats.DeduplicationRate).
		Msg("дедупликация завершена")

	items, suppressed, err := s.suppressSeen(ctx, job.UserID, dd.UniqueContent)
	if err != nil {
		return result, err
	}
	result.Suppressed = suppressed
	metrics.AddRecords(metrics.StageSuppressed, suppressed)

	scored := s.ranker.ScoreMultipleItems(items, profile, s.weights(profile))
	metrics.AddRecords(metrics.StageScored, len(scored))
	result.Items = s.selectItems(scored)

	if len(result.Items) == 0 {
		logger.Warn().
			Int("unique", stats.TotalUnique).
			Int("suppressed", suppressed).
			Msg("после фильтрации не осталось материалов")
		s.recordRun(ctx, logger, job, result, startedAt)
		return result, ErrNoContent
	}

	if err := s.curated.SaveCuratedItems(ctx, job.UserID, result.Items); err != nil {
		return result, fmt.Errorf("сохранение выдачи: %w", err)
	}
	metrics.AddRecords(metrics.StageStored, len(result.Items))
	s.recordRun(ctx, logger, job, result, startedAt)

	logger.Info().Int("stored", len(result.Items)).Msg("прогон курирования завершён")
	return result, nil
}

func (s *Service) loadProfile(ctx context.Context, userID int64) (domain.UserProfile, error) {
	key := fmt.Sprintf("curation:profile:%d", userID)
	if s.cache != nil {
		if raw, err := s.cache.Get(key); err == nil && len(raw) > 0 {
			var profile domain.UserProfile
			if err := json.Unmarshal(raw, &profile); err == nil {
				return profile, nil
			}
		}
	}
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if s.cache != nil {
		if raw, err := json.Marshal(profile); err == nil {
			if err := s.cache.Set(key, raw, profileCacheTTL); err != nil {
				s.logger.Debug().Err(err).Int64("user_id", userID).Msg("не удалось закэшировать профиль")
			}
		}
	}
	return profile, nil
}

// suppressSeen считает хэши уникальных записей и отбрасывает уже выданные ранее.
func (s *Service) suppressSeen(ctx context.Context, userID int64, unique []domain.ContentRecord) ([]domain.ContentItem, int, error) {
	if len(unique) == 0 {
		return nil, 0, nil
	}
	hashes := make([]string, len(unique))
	for i, rec := range unique {
		hashes[i] = dedup.ContentHash(rec)
	}
	seen, err := s.curated.ExistingHashes(ctx, userID, hashes)
	if err != nil {
		return nil, 0, fmt.Errorf("проверка ранее выданного: %w", err)
	}
	items := make([]domain.ContentItem, 0, len(unique))
	suppressed := 0
	for i, rec := range unique {
		if _, ok := seen[hashes[i]]; ok {
			suppressed++
			continue
		}
		item := rec.Item()
		item.ContentHash = hashes[i]
		items = append(items, item)
	}
	return items, suppressed, nil
}

func (s *Service) weights(profile domain.UserProfile) *domain.ScoreWeights {
	if s.opts.Weights.IsZero() {
		return nil
	}
	w := ranker.OptimizedWeights(profile).With(s.opts.Weights)
	return &w
}

func (s *Service) selectItems(scored []domain.ScoredItem) []domain.ScoredItem {
	out := make([]domain.ScoredItem, 0, len(scored))
	for _, item := range scored {
		if item.RelevanceScore < s.opts.MinScore {
			continue
		}
		out = append(out, item)
		if s.opts.MaxItems > 0 && len(out) == s.opts.MaxItems {
			break
		}
	}
	return out
}

func (s *Service) recordRun(ctx context.Context, logger zerolog.Logger, job domain.CurationJob, result RunResult, startedAt time.Time) {
	run := domain.CurationRun{
		JobID:       job.ID,
		UserID:      job.UserID,
		Stats:       result.Stats,
		Suppressed:  result.Suppressed,
		Stored:      len(result.Items),
		StartedAt:   startedAt,
		CompletedAt: s.now().UTC(),
	}
	if err := s.curated.RecordCurationRun(ctx, run); err != nil {
		logger.Error().Err(err).Msg("не удалось сохранить итог прогона")
	}
}
