package domain

import (
	"context"
	"time"
)

// Deduplicator разбивает батч на уникальные материалы и группы дубликатов.
type Deduplicator interface {
	Deduplicate(records []ContentRecord) DeduplicationResult
}

// Ranker оценивает материалы относительно профиля пользователя.
type Ranker interface {
	ScoreMultipleItems(items []ContentItem, profile UserProfile, weights *ScoreWeights) []ScoredItem
}

// ContentSource отдаёт материалы, подготовленные сборщиками источников.
type ContentSource interface {
	ListPendingContent(ctx context.Context, userID int64, since time.Time) ([]ContentRecord, error)
}

// ProfileRepo управляет профилями пользователей.
type ProfileRepo interface {
	GetProfile(ctx context.Context, userID int64) (UserProfile, error)
	ListCurationUsers(ctx context.Context) ([]int64, error)
}

// CuratedRepo сохраняет результаты курирования.
type CuratedRepo interface {
	// ExistingHashes возвращает те хэши из списка, что уже сохранены ранее.
	ExistingHashes(ctx context.Context, userID int64, hashes []string) (map[string]struct{}, error)
	SaveCuratedItems(ctx context.Context, userID int64, items []ScoredItem) error
	RecordCurationRun(ctx context.Context, run CurationRun) error
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Once(key string, ttl time.Duration, fn func() error) error
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
}
