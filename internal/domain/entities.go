package domain

import "time"

// Platform обозначает источник, из которого пришёл материал.
type Platform string

const (
	PlatformReddit      Platform = "reddit"
	PlatformProductHunt Platform = "producthunt"
	PlatformHackerNews  Platform = "hackernews"
	PlatformRSS         Platform = "rss"
)

// ContentDepth задаёт предпочтительную глубину материалов.
type ContentDepth string

const (
	ContentDepthBrief    ContentDepth = "brief"
	ContentDepthDetailed ContentDepth = "detailed"
)

// ContentRecord описывает сырой материал, полученный от внешнего источника.
// ID назначается источником и никогда не меняется в ходе курирования.
type ContentRecord struct {
	ID             string
	Title          string
	Content        string
	URL            string
	SourcePlatform Platform
	PublishedAt    time.Time
	Topics         []string
	Metadata       SourceMetadata
}

// Item возвращает представление записи для скоринга.
func (r ContentRecord) Item() ContentItem {
	meta := r.Metadata
	if meta == nil {
		meta = UnknownMetadata{}
	}
	return ContentItem{
		RecordID:       r.ID,
		Title:          r.Title,
		Content:        r.Content,
		URL:            r.URL,
		SourcePlatform: r.SourcePlatform,
		SourceMetadata: meta,
		PublishedAt:    r.PublishedAt,
		Topics:         r.Topics,
	}
}

// ContentItem представляет запись для скоринга, только для чтения.
type ContentItem struct {
	RecordID       string
	Title          string
	Content        string
	URL            string
	SourcePlatform Platform
	SourceMetadata SourceMetadata
	PublishedAt    time.Time
	Topics         []string
	ContentHash    string
}

// UserProfile содержит предпочтения пользователя для одного прогона.
type UserProfile struct {
	UserID           int64        `json:"user_id"`
	Interests        []string     `json:"interests"`
	TechStack        []string     `json:"tech_stack"`
	ContentDepth     ContentDepth `json:"content_depth"`
	ProfessionalRole string       `json:"professional_role,omitempty"`
	Industry         string       `json:"industry,omitempty"`
}

// DuplicateGroup объединяет оригинал и найденные к нему дубликаты.
type DuplicateGroup struct {
	Original   ContentRecord
	Duplicates []ContentRecord
	Reason     string
}

// DeduplicationResult описывает результат дедупликации одного батча.
type DeduplicationResult struct {
	UniqueContent   []ContentRecord
	DuplicateGroups []DuplicateGroup
}

// DeduplicationStats содержит производную статистику по результату дедупликации.
type DeduplicationStats struct {
	TotalOriginal      int            `json:"total_original"`
	TotalUnique        int            `json:"total_unique"`
	TotalDuplicates    int            `json:"total_duplicates"`
	DeduplicationRate  float64        `json:"deduplication_rate"`
	DuplicatesByReason map[string]int `json:"duplicates_by_reason"`
}

// ScoredItem хранит оценённый материал после ранжирования.
type ScoredItem struct {
	ContentItem
	RelevanceScore   float64
	Relevance        float64
	Quality          float64
	Recency          float64
	DiversityPenalty float64
}

// CurationRun фиксирует итог одного прогона курирования.
type CurationRun struct {
	JobID       string
	UserID      int64
	Stats       DeduplicationStats
	Suppressed  int
	Stored      int
	StartedAt   time.Time
	CompletedAt time.Time
}
