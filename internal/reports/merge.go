package reports

// YearSet pairs a year label with the records reshaped from that year's
// table.
type YearSet struct {
	Year    string
	Records Dataset
}

// Merge concatenates per-year record sets into one Dataset. Year tags are
// preserved verbatim; sets are emitted in the canonical year order so that a
// caller may supply years out of order and still get stable chart series.
// Years missing from the order list follow the listed ones in input order.
// Concatenation order otherwise carries no meaning: every downstream
// aggregation groups by explicit keys, not position.
func Merge(yearOrder []string, sets []YearSet) Dataset {
	rank := make(map[string]int, len(yearOrder))
	for i, y := range yearOrder {
		rank[y] = i
	}

	var total int
	for _, s := range sets {
		total += len(s.Records)
	}
	out := make(Dataset, 0, total)

	for _, y := range yearOrder {
		for _, s := range sets {
			if s.Year == y {
				out = append(out, s.Records...)
			}
		}
	}
	for _, s := range sets {
		if _, listed := rank[s.Year]; !listed {
			out = append(out, s.Records...)
		}
	}
	return out
}
