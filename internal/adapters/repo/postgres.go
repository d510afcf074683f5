package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"content-curator/internal/domain"
	"content-curator/internal/infra/metrics"
)

// ErrProfileNotFound возвращается, если у пользователя нет профиля.
var ErrProfileNotFound = errors.New("профиль не найден")

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.ProfileRepo   = (*Postgres)(nil)
	_ domain.ContentSource = (*Postgres)(nil)
	_ domain.CuratedRepo   = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtxWithParent(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// GetProfile реализует domain.ProfileRepo.
func (p *Postgres) GetProfile(ctx context.Context, userID int64) (domain.UserProfile, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	profile := domain.UserProfile{UserID: userID}
	var depth string
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT interests, tech_stack, content_depth, COALESCE(professional_role, ''), COALESCE(industry, '')
FROM user_profiles WHERE user_id=$1
`, userID).Scan(&profile.Interests, &profile.TechStack, &depth, &profile.ProfessionalRole, &profile.Industry)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.ObserveNetworkRequest("postgres", "profiles_get", "user_profiles", start, nil)
		return domain.UserProfile{}, ErrProfileNotFound
	}
	metrics.ObserveNetworkRequest("postgres", "profiles_get", "user_profiles", start, err)
	if err != nil {
		return domain.UserProfile{}, err
	}
	profile.ContentDepth = domain.ContentDepth(depth)
	return profile, nil
}

// ListCurationUsers возвращает пользователей с включённым курированием.
func (p *Postgres) ListCurationUsers(ctx context.Context) ([]int64, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT user_id FROM user_profiles WHERE curation_enabled ORDER BY user_id
`)
	metrics.ObserveNetworkRequest("postgres", "profiles_list_enabled", "user_profiles", start, err)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListPendingContent возвращает материалы, собранные для пользователя после since.
func (p *Postgres) ListPendingContent(ctx context.Context, userID int64, since time.Time) ([]domain.ContentRecord, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, title, content, url, source_platform, published_at, topics, metadata
FROM raw_content WHERE user_id=$1 AND collected_at >= $2
ORDER BY collected_at, id
`, userID, since)
	metrics.ObserveNetworkRequest("postgres", "raw_content_list", "raw_content", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ContentRecord
	for rows.Next() {
		var (
			rec      domain.ContentRecord
			platform string
			raw      []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Content, &rec.URL, &platform, &rec.PublishedAt, &rec.Topics, &raw); err != nil {
			return nil, err
		}
		rec.SourcePlatform = domain.Platform(platform)
		rec.Metadata = domain.DecodeSourceMetadata(rec.SourcePlatform, raw)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ExistingHashes реализует domain.CuratedRepo.
func (p *Postgres) ExistingHashes(ctx context.Context, userID int64, hashes []string) (map[string]struct{}, error) {
	found := make(map[string]struct{})
	if len(hashes) == 0 {
		return found, nil
	}
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT content_hash FROM curated_items WHERE user_id=$1 AND content_hash = ANY($2)
`, userID, hashes)
	metrics.ObserveNetworkRequest("postgres", "curated_existing_hashes", "curated_items", start, err)
	if err != nil {
		return nil, err
	}
	existing, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	for _, h := range existing {
		found[h] = struct{}{}
	}
	return found, nil
}

// SaveCuratedItems сохраняет выдачу одним батчем. Повторная запись того же
// хэша для пользователя игнорируется.
func (p *Postgres) SaveCuratedItems(ctx context.Context, userID int64, items []domain.ScoredItem) error {
	if len(items) == 0 {
		return nil
	}
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	batch := &pgx.Batch{}
	for idx, item := range items {
		meta, err := domain.EncodeSourceMetadata(item.SourceMetadata)
		if err != nil {
			return fmt.Errorf("метаданные %s: %w", item.RecordID, err)
		}
		batch.Queue(`
INSERT INTO curated_items (user_id, content_hash, record_id, title, url, source_platform, published_at, metadata,
	score, relevance, quality, recency, diversity_penalty, rank)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (user_id, content_hash) DO NOTHING
`, userID, item.ContentHash, item.RecordID, item.Title, item.URL, string(item.SourcePlatform), item.PublishedAt, meta,
			item.RelevanceScore, item.Relevance, item.Quality, item.Recency, item.DiversityPenalty, idx+1)
	}
	start := time.Now()
	br := p.pool.SendBatch(ctx, batch)
	metrics.ObserveNetworkRequest("postgres", "curated_send_batch", "curated_items", start, nil)
	defer br.Close()
	for range items {
		start = time.Now()
		_, err := br.Exec()
		metrics.ObserveNetworkRequest("postgres", "curated_batch_exec", "curated_items", start, err)
		if err != nil {
			return err
		}
	}
	return nil
}

// RecordCurationRun сохраняет итог прогона.
func (p *Postgres) RecordCurationRun(ctx context.Context, run domain.CurationRun) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	byReason, err := json.Marshal(run.Stats.DuplicatesByReason)
	if err != nil {
		return fmt.Errorf("статистика дубликатов: %w", err)
	}
	start := time.Now()
	_, err = p.pool.Exec(ctx, `
INSERT INTO curation_runs (job_id, user_id, total_original, total_unique, total_duplicates, deduplication_rate,
	duplicates_by_reason, suppressed, stored, started_at, completed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (job_id) DO NOTHING
`, run.JobID, run.UserID, run.Stats.TotalOriginal, run.Stats.TotalUnique, run.Stats.TotalDuplicates, run.Stats.DeduplicationRate,
		byReason, run.Suppressed, run.Stored, run.StartedAt, run.CompletedAt)
	metrics.ObserveNetworkRequest("postgres", "curation_runs_insert", "curation_runs", start, err)
	return err
}
