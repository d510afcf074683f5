package ranker

import (
	"strings"
	"unicode/utf8"

	"content-curator/internal/domain"
)

const (
	qualityBase     = 30.0
	qualityBaseline = 60.0

	redditScoreCap    = 1000.0
	redditScorePts    = 30.0
	redditCommentsCap = 200.0
	redditCommentsPts = 20.0
	redditChannelPts  = 10.0

	redditLongBodyRunes   = 500
	redditLongBodyPts     = 10.0
	redditMediumBodyRunes = 200
	redditMediumBodyPts   = 5.0

	aggregatorVotesCap    = 500.0
	aggregatorVotesPts    = 35.0
	aggregatorCommentsCap = 100.0
	aggregatorCommentsPts = 20.0
	aggregatorCategoryPts = 15.0
)

// highQualitySubreddits — каналы с заведомо высоким сигналом.
var highQualitySubreddits = map[string]struct{}{
	"programming":          {},
	"golang":               {},
	"rust":                 {},
	"python":               {},
	"javascript":           {},
	"typescript":           {},
	"reactjs":              {},
	"webdev":               {},
	"devops":               {},
	"kubernetes":           {},
	"machinelearning":      {},
	"experienceddevs":      {},
	"softwarearchitecture": {},
	"netsec":               {},
	"databases":            {},
}

// highValueCategories — категории агрегатора, которые считаются ценными.
var highValueCategories = map[string]struct{}{
	"developer tools":         {},
	"productivity":            {},
	"artificial intelligence": {},
	"open source":             {},
	"saas":                    {},
	"tech":                    {},
	"api":                     {},
	"no-code":                 {},
}

// QualityScore оценивает качество материала по метаданным платформы.
// Материалы без метаданных получают базовую оценку, а не штраф.
func QualityScore(item domain.ContentItem) float64 {
	switch meta := item.SourceMetadata.(type) {
	case domain.RedditMetadata:
		return redditQuality(meta, item.Content)
	case domain.AggregatorMetadata:
		return aggregatorQuality(meta)
	case domain.UnknownMetadata, nil:
		return qualityBaseline
	default:
		return qualityBaseline
	}
}

func redditQuality(meta domain.RedditMetadata, content string) float64 {
	score := qualityBase
	score += saturate(float64(meta.Score), redditScoreCap) * redditScorePts
	score += saturate(float64(meta.Comments), redditCommentsCap) * redditCommentsPts
	sub := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(meta.Subreddit)), "r/")
	if _, ok := highQualitySubreddits[sub]; ok {
		score += redditChannelPts
	}
	switch n := utf8.RuneCountInString(strings.TrimSpace(content)); {
	case n > redditLongBodyRunes:
		score += redditLongBodyPts
	case n > redditMediumBodyRunes:
		score += redditMediumBodyPts
	}
	return clamp(score, 0, 100)
}

func aggregatorQuality(meta domain.AggregatorMetadata) float64 {
	score := qualityBase
	score += saturate(float64(meta.VotesCount), aggregatorVotesCap) * aggregatorVotesPts
	score += saturate(float64(meta.CommentsCount), aggregatorCommentsCap) * aggregatorCommentsPts
	for _, c := range meta.Categories {
		if _, ok := highValueCategories[strings.ToLower(strings.TrimSpace(c))]; ok {
			score += aggregatorCategoryPts
			break
		}
	}
	return clamp(score, 0, 100)
}

// saturate приводит счётчик к доле в [0,1] относительно порога насыщения.
func saturate(v, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return clamp(v/limit, 0, 1)
}
