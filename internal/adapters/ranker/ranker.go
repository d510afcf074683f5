package ranker

import (
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"content-curator/internal/adapters/similarity"
	"content-curator/internal/domain"
)

// Ranker применяет эвристический скоринг: релевантность, качество,
// свежесть и штраф за однообразие выдачи.
type Ranker struct {
	MaxAgeHours float64
	Workers     int
	Now         func() time.Time
}

var _ domain.Ranker = (*Ranker)(nil)

// New создаёт ранжировщик с заданным окном свежести.
func New(maxAgeHours float64) *Ranker {
	if maxAgeHours <= 0 {
		maxAgeHours = DefaultMaxAgeHours
	}
	return &Ranker{MaxAgeHours: maxAgeHours, Workers: runtime.GOMAXPROCS(0), Now: time.Now}
}

type candidate struct {
	item      domain.ContentItem
	text      similarity.Text
	relevance float64
	quality   float64
	recency   float64
	base      float64
}

// ScoreMultipleItems оценивает батч. Штраф разнообразия считается
// последовательно: кандидаты размещаются по убыванию релевантности, и каждый
// следующий сравнивается со всеми уже размещёнными. Результат отсортирован
// по итоговой оценке по убыванию.
func (r *Ranker) ScoreMultipleItems(items []domain.ContentItem, profile domain.UserProfile, weights *domain.ScoreWeights) []domain.ScoredItem {
	if len(items) == 0 {
		return []domain.ScoredItem{}
	}
	w := OptimizedWeights(profile)
	if weights != nil {
		w = weights.Normalize()
	}
	now := r.now()

	cands := make([]candidate, len(items))
	var g errgroup.Group
	g.SetLimit(r.workers())
	for i := range items {
		i := i
		g.Go(func() error {
			cands[i] = r.baseScores(items[i], profile, w, now)
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(cands, func(a, b int) bool {
		if cands[a].relevance != cands[b].relevance {
			return cands[a].relevance > cands[b].relevance
		}
		return cands[a].base > cands[b].base
	})

	out := make([]domain.ScoredItem, 0, len(cands))
	placed := make([]similarity.Text, 0, len(cands))
	for _, c := range cands {
		penalty := diversityPenalty(c.text, placed)
		placed = append(placed, c.text)
		out = append(out, domain.ScoredItem{
			ContentItem:      c.item,
			RelevanceScore:   clamp(c.base-penalty*w.Diversity, 0, 100),
			Relevance:        c.relevance,
			Quality:          c.quality,
			Recency:          c.recency,
			DiversityPenalty: penalty,
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].RelevanceScore > out[b].RelevanceScore
	})
	return out
}

// OverallScore считает итоговую оценку одного материала относительно уже
// ранжированных. Веса нормируются перед применением.
func (r *Ranker) OverallScore(item domain.ContentItem, profile domain.UserProfile, ranked []domain.ContentItem, weights domain.ScoreWeights) float64 {
	w := weights.Normalize()
	c := r.baseScores(item, profile, w, r.now())
	penalty := DiversityPenalty(item, ranked)
	return clamp(c.base-penalty*w.Diversity, 0, 100)
}

func (r *Ranker) baseScores(item domain.ContentItem, profile domain.UserProfile, w domain.ScoreWeights, now time.Time) candidate {
	c := candidate{
		item:      item,
		text:      diversityText(item),
		relevance: RelevanceScore(item, profile),
		quality:   QualityScore(item),
		recency:   RecencyScoreAt(item, now, r.MaxAgeHours),
	}
	c.base = c.relevance*w.Relevance + c.quality*w.Quality + c.recency*w.Recency
	return c
}

func (r *Ranker) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Ranker) workers() int {
	if r.Workers <= 0 {
		return 1
	}
	return r.Workers
}
