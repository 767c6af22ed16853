package helpers

import (
	"sort"

	"github.com/doeshing/pteroai-go/internal/domain"
)

// CountStatistic is one label with its number of occurrences.
type CountStatistic struct {
	Label string
	Count int
}

// HistoryStatistics summarises recorded decisions.
type HistoryStatistics struct {
	Total         int
	Invalid       int
	Degraded      int
	ByLevel       map[domain.SecurityLevel]int
	TopTargets    []CountStatistic
	AvgConfidence float64
}

// AnalyzeHistory computes statistics over entries, keeping the top N target files.
func AnalyzeHistory(entries []domain.DecisionHistoryEntry, topN int) HistoryStatistics {
	stats := HistoryStatistics{ByLevel: make(map[domain.SecurityLevel]int)}
	targets := make(map[string]int)
	var confidence float64

	for _, entry := range entries {
		d := entry.Decision
		stats.Total++
		stats.ByLevel[d.Validation.SecurityLevel]++
		if !d.Validation.Valid {
			stats.Invalid++
		}
		if d.Degraded() {
			stats.Degraded++
		}
		confidence += d.Confidence
		for _, target := range d.TargetFiles {
			targets[target]++
		}
	}
	if stats.Total > 0 {
		stats.AvgConfidence = confidence / float64(stats.Total)
	}
	stats.TopTargets = TopCounts(targets, topN)
	return stats
}

// TopCounts returns the top N labels by count, ties broken by label.
// If limit is 0 or negative, returns all labels.
func TopCounts(frequency map[string]int, limit int) []CountStatistic {
	stats := make([]CountStatistic, 0, len(frequency))
	for label, count := range frequency {
		stats = append(stats, CountStatistic{Label: label, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count == stats[j].Count {
			return stats[i].Label < stats[j].Label
		}
		return stats[i].Count > stats[j].Count
	})
	if limit > 0 && len(stats) > limit {
		return stats[:limit]
	}
	return stats
}
