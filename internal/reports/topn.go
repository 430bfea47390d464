package reports

import (
	"fmt"
	"sort"
)

// TopN ranks the entities of an entity-grouped AggregateTable by summed
// measure and returns the leading n as an ordered label list, truncated when
// fewer entities exist. The sort is stable, so ties keep their original
// (first-appearance) order and TopN(n) is always a prefix of TopN(n+1).
//
// Returning the membership list instead of a filtered table is deliberate:
// it lets a chart show, say, the per-year breakdown of the entities that are
// top-N by all-years total, even though no single year produced that exact
// ranking.
func TopN(totals *AggregateTable, n int) ([]string, error) {
	if n < 1 {
		return nil, fmt.Errorf("top-n: n must be at least 1, got %d", n)
	}

	type ranked struct {
		entity  string
		measure float64
	}
	rows := make([]ranked, 0, len(totals.Rows))
	for _, r := range totals.Rows {
		rows = append(rows, ranked{entity: r.Entity, measure: r.Measure})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].measure > rows[j].measure
	})

	if n > len(rows) {
		n = len(rows)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = rows[i].entity
	}
	return out, nil
}
