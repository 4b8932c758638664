// Package report rolls current per-subject states up into market-share
// statistics and renders run outputs.
package report

import (
	"math"
	"sort"

	"github.com/renwave/tashare/internal/model"
)

// Aggregate groups current states by label and produces the ranked
// market-share table. Subjects are deduplicated by identifier before
// counting, so repeated evidence for one subject cannot inflate its
// label; the first state seen for a subject wins. Percentages are
// computed against the full distinct-subject total and rounded to two
// decimals. Rows sort by count descending, ties alphabetically by label.
func Aggregate(states []model.CurrentState) model.MarketShare {
	assigned := make(map[string]string) // subject -> label, first wins
	var order []string
	for _, s := range states {
		if _, ok := assigned[s.SubjectID]; ok {
			continue
		}
		assigned[s.SubjectID] = s.Label
		order = append(order, s.SubjectID)
	}

	counts := make(map[string]int)
	for _, subject := range order {
		counts[assigned[subject]]++
	}

	total := len(order)
	rows := make([]model.ShareRow, 0, len(counts))
	for label, count := range counts {
		rows = append(rows, model.ShareRow{
			Label:      label,
			Count:      count,
			Percentage: sharePct(count, total),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Label < rows[j].Label
	})

	return model.MarketShare{Rows: rows, Total: total}
}

// Top truncates the table to its first n rows without recomputing
// percentages: shares always describe the full population, never the
// truncated subset. n <= 0 means no truncation.
func Top(ms model.MarketShare, n int) model.MarketShare {
	if n <= 0 || n >= len(ms.Rows) {
		return ms
	}
	return model.MarketShare{Rows: ms.Rows[:n], Total: ms.Total}
}

func sharePct(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*10000) / 100
}
