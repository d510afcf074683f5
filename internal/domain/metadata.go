package domain

import (
	"strings"

	json "github.com/goccy/go-json"
)

// SourceMetadata объединяет платформенные метаданные; реализации закрыты в пакете.
// Реализации: RedditMetadata, AggregatorMetadata, UnknownMetadata.
type SourceMetadata interface {
	isSourceMetadata()
}

// RedditMetadata описывает метаданные форумного поста (Reddit, Hacker News).
type RedditMetadata struct {
	Score     int    `json:"score"`
	Comments  int    `json:"comments"`
	Subreddit string `json:"subreddit"`
}

// AggregatorMetadata описывает метаданные агрегатора продуктов.
type AggregatorMetadata struct {
	VotesCount    int      `json:"votesCount"`
	CommentsCount int      `json:"commentsCount"`
	Categories    []string `json:"categories"`
}

// UnknownMetadata используется, когда платформа не даёт метаданных.
type UnknownMetadata struct{}

func (RedditMetadata) isSourceMetadata()     {}
func (AggregatorMetadata) isSourceMetadata() {}
func (UnknownMetadata) isSourceMetadata()    {}

// DecodeSourceMetadata разбирает сохранённый JSON по платформе.
// Ошибки разбора не возвращаются: вместо них отдаётся UnknownMetadata.
func DecodeSourceMetadata(platform Platform, raw []byte) SourceMetadata {
	if len(raw) == 0 {
		return UnknownMetadata{}
	}
	switch Platform(strings.ToLower(string(platform))) {
	case PlatformReddit, PlatformHackerNews:
		var meta RedditMetadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			return UnknownMetadata{}
		}
		return meta
	case PlatformProductHunt:
		var meta AggregatorMetadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			return UnknownMetadata{}
		}
		return meta
	default:
		return UnknownMetadata{}
	}
}

// EncodeSourceMetadata сериализует метаданные для хранения.
func EncodeSourceMetadata(meta SourceMetadata) ([]byte, error) {
	switch m := meta.(type) {
	case RedditMetadata, AggregatorMetadata:
		return json.Marshal(m)
	default:
		return nil, nil
	}
}
