package ranker

import (
	"time"

	"content-curator/internal/domain"
)

// DefaultMaxAgeHours задаёт окно свежести по умолчанию (неделя).
const DefaultMaxAgeHours = 168.0

// RecencyScore линейно убывает от 100 в момент публикации до 0 к maxAgeHours.
func RecencyScore(item domain.ContentItem, maxAgeHours float64) float64 {
	return RecencyScoreAt(item, time.Now(), maxAgeHours)
}

// RecencyScoreAt считает свежесть относительно переданного момента.
func RecencyScoreAt(item domain.ContentItem, now time.Time, maxAgeHours float64) float64 {
	if maxAgeHours <= 0 {
		maxAgeHours = DefaultMaxAgeHours
	}
	hoursSince := now.Sub(item.PublishedAt).Hours()
	if hoursSince >= maxAgeHours {
		return 0
	}
	return clamp(100*(1-hoursSince/maxAgeHours), 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v != v {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
