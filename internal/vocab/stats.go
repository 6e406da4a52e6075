package vocab

import (
	"sort"
	"strings"
)

// UncategorizedLabel groups entries without a category in statistics.
const UncategorizedLabel = "uncategorized"

// CategoryStat counts entries sharing one category.
type CategoryStat struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryStats counts entries per category, ordered by descending count and
// then by name.
func CategoryStats(entries []WordEntry) []CategoryStat {
	counts := make(map[string]int)
	for _, e := range entries {
		category := strings.TrimSpace(e.Category)
		if category == "" {
			category = UncategorizedLabel
		}
		counts[category]++
	}
	stats := make([]CategoryStat, 0, len(counts))
	for category, count := range counts {
		stats = append(stats, CategoryStat{Category: category, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Category < stats[j].Category
	})
	return stats
}
