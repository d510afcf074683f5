package dedup

import (
	"strings"

	"content-curator/internal/domain"
)

// Stats считает производную статистику по результату дедупликации.
// Причины группируются по префиксу без процента: "Similar titles (91%)"
// учитывается как "Similar titles".
func Stats(result domain.DeduplicationResult) domain.DeduplicationStats {
	stats := domain.DeduplicationStats{
		TotalUnique:        len(result.UniqueContent),
		DuplicatesByReason: make(map[string]int),
	}
	for _, group := range result.DuplicateGroups {
		stats.TotalDuplicates += len(group.Duplicates)
		stats.DuplicatesByReason[ReasonPrefix(group.Reason)] += len(group.Duplicates)
	}
	stats.TotalOriginal = stats.TotalUnique + stats.TotalDuplicates
	if stats.TotalOriginal > 0 {
		stats.DeduplicationRate = float64(stats.TotalDuplicates) / float64(stats.TotalOriginal) * 100
	}
	return stats
}

// ReasonPrefix отрезает от причины уточнение в скобках.
func ReasonPrefix(reason string) string {
	if idx := strings.Index(reason, " ("); idx >= 0 {
		return reason[:idx]
	}
	return reason
}
