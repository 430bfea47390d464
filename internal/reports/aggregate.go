package reports

import (
	"fmt"
	"sort"
)

// Aggregate groups a Dataset by a nonempty subset of {entity, month, year}
// and sums Measure (and Qty) per distinct combination present in the data.
// Summation is commutative, so the result is independent of record order.
//
// Row order is deterministic: years in dataset order, months in calendar
// order, entities in first-appearance order. An unknown dimension is a
// configuration mistake upstream and returns an error rather than a guess.
func Aggregate(ds Dataset, dims ...Dimension) (*AggregateTable, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("aggregate: at least one grouping dimension required")
	}
	seen := make(map[Dimension]bool, len(dims))
	for _, d := range dims {
		switch d {
		case DimEntity, DimMonth, DimYear:
		default:
			return nil, fmt.Errorf("aggregate: unknown grouping dimension %q", d)
		}
		if seen[d] {
			return nil, fmt.Errorf("aggregate: duplicate grouping dimension %q", d)
		}
		seen[d] = true
	}

	type key struct {
		entity string
		month  Month
		year   string
	}

	sums := make(map[key]*AggregateRow)
	entityRank := make(map[string]int)
	yearRank := make(map[string]int)
	var order []key

	for _, r := range ds {
		k := key{}
		row := AggregateRow{}
		if seen[DimEntity] {
			k.entity = r.Entity
			row.Entity = r.Entity
			if _, ok := entityRank[r.Entity]; !ok {
				entityRank[r.Entity] = len(entityRank)
			}
		}
		if seen[DimMonth] {
			k.month = r.Month
			row.Month = r.Month
		}
		if seen[DimYear] {
			k.year = r.Year
			row.Year = r.Year
			if _, ok := yearRank[r.Year]; !ok {
				yearRank[r.Year] = len(yearRank)
			}
		}

		if acc, ok := sums[k]; ok {
			acc.Measure += r.Measure
			acc.Qty += r.Qty
		} else {
			row.Measure = r.Measure
			row.Qty = r.Qty
			sums[k] = &row
			order = append(order, k)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.year != b.year {
			return yearRank[a.year] < yearRank[b.year]
		}
		if a.month != b.month {
			return a.month < b.month
		}
		return entityRank[a.entity] < entityRank[b.entity]
	})

	table := &AggregateTable{Dims: dims, Rows: make([]AggregateRow, 0, len(order))}
	for _, k := range order {
		table.Rows = append(table.Rows, *sums[k])
	}
	return table, nil
}

// AverageByEntity groups a Dataset by entity and averages Measure (and Qty)
// over each entity's records. Since the reshaper emits one record per
// (entity, month) fact, this is the average monthly figure for the slice the
// caller passes in (typically one selected year). Rows come out largest
// average first, ties by first appearance.
func AverageByEntity(ds Dataset) *AggregateTable {
	type acc struct {
		measure float64
		qty     float64
		n       int
	}
	sums := make(map[string]*acc)
	var order []string
	for _, r := range ds {
		a, ok := sums[r.Entity]
		if !ok {
			a = &acc{}
			sums[r.Entity] = a
			order = append(order, r.Entity)
		}
		a.measure += r.Measure
		a.qty += r.Qty
		a.n++
	}

	table := &AggregateTable{Dims: []Dimension{DimEntity}, Rows: make([]AggregateRow, 0, len(order))}
	for _, entity := range order {
		a := sums[entity]
		table.Rows = append(table.Rows, AggregateRow{
			Entity:  entity,
			Measure: a.measure / float64(a.n),
			Qty:     a.qty / float64(a.n),
		})
	}
	sort.SliceStable(table.Rows, func(i, j int) bool {
		return table.Rows[i].Measure > table.Rows[j].Measure
	})
	return table
}

// Total sums the Measure column of the table.
func (t *AggregateTable) Total() float64 {
	var sum float64
	for _, r := range t.Rows {
		sum += r.Measure
	}
	return sum
}

// FilterEntities returns a copy of the table restricted to rows whose entity
// is in keep, preserving row order. Used to cut a breakdown table down to a
// Top-N membership list computed over a different scope.
func (t *AggregateTable) FilterEntities(keep []string) *AggregateTable {
	set := make(map[string]struct{}, len(keep))
	for _, e := range keep {
		set[e] = struct{}{}
	}
	out := &AggregateTable{Dims: t.Dims, Rows: make([]AggregateRow, 0, len(t.Rows))}
	for _, r := range t.Rows {
		if _, ok := set[r.Entity]; ok {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}
