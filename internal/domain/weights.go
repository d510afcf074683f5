package domain

import "math"

// ScoreWeights задаёт вклад компонентов в итоговую оценку.
// Значения неотрицательны и всегда нормированы к сумме 1.0.
type ScoreWeights struct {
	Relevance float64 `json:"relevance"`
	Quality   float64 `json:"quality"`
	Recency   float64 `json:"recency"`
	Diversity float64 `json:"diversity"`
}

// WeightOverrides позволяет переопределить отдельные веса.
type WeightOverrides struct {
	Relevance *float64
	Quality   *float64
	Recency   *float64
	Diversity *float64
}

// IsZero сообщает, что ни один вес не переопределён.
func (o WeightOverrides) IsZero() bool {
	return o.Relevance == nil && o.Quality == nil && o.Recency == nil && o.Diversity == nil
}

// DefaultWeights возвращает базовые веса.
func DefaultWeights() ScoreWeights {
	return ScoreWeights{Relevance: 0.4, Quality: 0.3, Recency: 0.2, Diversity: 0.1}
}

// NewScoreWeights создаёт нормированные веса. Отрицательные, NaN и
// бесконечные значения обнуляются, при нулевой сумме возвращаются DefaultWeights.
func NewScoreWeights(relevance, quality, recency, diversity float64) ScoreWeights {
	w := ScoreWeights{
		Relevance: nonNegative(relevance),
		Quality:   nonNegative(quality),
		Recency:   nonNegative(recency),
		Diversity: nonNegative(diversity),
	}
	sum := w.Sum()
	if sum <= 0 {
		return DefaultWeights()
	}
	return ScoreWeights{
		Relevance: w.Relevance / sum,
		Quality:   w.Quality / sum,
		Recency:   w.Recency / sum,
		Diversity: w.Diversity / sum,
	}
}

// Normalize возвращает копию весов с суммой 1.0.
func (w ScoreWeights) Normalize() ScoreWeights {
	return NewScoreWeights(w.Relevance, w.Quality, w.Recency, w.Diversity)
}

// Sum возвращает сумму весов.
func (w ScoreWeights) Sum() float64 {
	return w.Relevance + w.Quality + w.Recency + w.Diversity
}

// With применяет частичные переопределения и нормирует результат.
func (w ScoreWeights) With(o WeightOverrides) ScoreWeights {
	if o.Relevance != nil {
		w.Relevance = *o.Relevance
	}
	if o.Quality != nil {
		w.Quality = *o.Quality
	}
	if o.Recency != nil {
		w.Recency = *o.Recency
	}
	if o.Diversity != nil {
		w.Diversity = *o.Diversity
	}
	return w.Normalize()
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
