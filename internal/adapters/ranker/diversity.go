package ranker

import (
	"content-curator/internal/adapters/similarity"
	"content-curator/internal/domain"
)

const (
	diversityThreshold = 0.5
	diversityPenaltyPt = 20.0
)

// DiversityPenalty суммирует штрафы за похожесть кандидата на уже
// размещённые материалы. Штраф не ограничен сверху и растёт с каждым
// повтором одной темы.
func DiversityPenalty(candidate domain.ContentItem, ranked []domain.ContentItem) float64 {
	placed := make([]similarity.Text, 0, len(ranked))
	for _, item := range ranked {
		placed = append(placed, diversityText(item))
	}
	return diversityPenalty(diversityText(candidate), placed)
}

func diversityPenalty(candidate similarity.Text, placed []similarity.Text) float64 {
	penalty := 0.0
	for _, existing := range placed {
		sim := similarity.Compare(candidate, existing)
		if sim <= diversityThreshold {
			continue
		}
		over := (sim - diversityThreshold) / (1 - diversityThreshold)
		penalty += diversityPenaltyPt * (1 + over)
	}
	return penalty
}

func diversityText(item domain.ContentItem) similarity.Text {
	return similarity.Prepare(item.Title + " " + item.Content)
}
