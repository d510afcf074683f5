package ranker

import "content-curator/internal/domain"

const depthShift = 0.1

// OptimizedWeights подбирает веса под глубину контента: подробные материалы
// смещают вес от свежести к качеству, краткие наоборот.
func OptimizedWeights(profile domain.UserProfile) domain.ScoreWeights {
	w := domain.DefaultWeights()
	switch profile.ContentDepth {
	case domain.ContentDepthDetailed:
		w.Quality += depthShift
		w.Recency -= depthShift
	case domain.ContentDepthBrief:
		w.Quality -= depthShift
		w.Recency += depthShift
	}
	return w.Normalize()
}
