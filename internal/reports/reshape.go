package reports

import (
	"fmt"
	"strings"
)

// Reshaper converts one RawTable plus a year tag into LongRecords. All three
// input shapes funnel into the same output form, so downstream stages never
// care which layout a file used.
type Reshaper struct {
	classifier *Classifier
	aliases    map[string]string
}

// NewReshaper builds a reshaper. The alias map collapses multiple raw
// spellings of one entity (customer ID variants, "X - Other", "Total X"
// rollup rows) into a single canonical label before records are emitted; nil
// means no collapsing. A nil classifier gets the default rule set.
func NewReshaper(classifier *Classifier, aliases map[string]string) *Reshaper {
	if classifier == nil {
		classifier = NewClassifier(nil, nil)
	}
	return &Reshaper{classifier: classifier, aliases: aliases}
}

// Reshape emits one LongRecord per (entity, month) fact in the table. The
// table's declared Shape is honored; ShapeAuto runs DetectShape first.
// Reshaping is idempotent: the same table always yields the same records.
func (r *Reshaper) Reshape(table RawTable, year string) (Dataset, error) {
	shape := table.Shape
	if shape == ShapeAuto {
		shape = DetectShape(table.Rows)
	}

	switch shape {
	case ShapeWideMonthly:
		return r.reshapeWide(table.Rows, year)
	case ShapeExplicitLongPair:
		return r.reshapeLongPair(table.Rows, year)
	case ShapeInterleavedMetricBlock:
		return r.reshapeInterleaved(table.Rows, year)
	default:
		return nil, fmt.Errorf("unsupported table shape %v", shape)
	}
}

// canonical trims a raw entity label and collapses it through the alias map.
func (r *Reshaper) canonical(label string) string {
	s := strings.TrimSpace(label)
	if alias, ok := r.aliases[s]; ok {
		return strings.TrimSpace(alias)
	}
	return s
}

// reshapeWide melts a one-column-per-month table. Columns whose label does
// not normalize to a month (a trailing TOTAL, stray annotations) are skipped
// silently; they may simply not be month columns. Zero cells still emit
// records, matching the dense amount-keyed exports.
func (r *Reshaper) reshapeWide(rows [][]string, year string) (Dataset, error) {
	if len(rows) < 1 {
		return nil, fmt.Errorf("wide table: missing header row")
	}

	header := rows[0]
	type monthCol struct {
		idx   int
		month Month
	}
	var monthCols []monthCol
	for i := 1; i < len(header); i++ {
		if m, ok := ParseMonth(header[i]); ok {
			monthCols = append(monthCols, monthCol{idx: i, month: m})
		}
	}

	var out Dataset
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		entity := r.canonical(row[0])
		if !r.classifier.Keep(entity) {
			continue
		}
		for _, mc := range monthCols {
			var cell string
			if mc.idx < len(row) {
				cell = row[mc.idx]
			}
			out = append(out, LongRecord{
				Entity:  entity,
				Month:   mc.month,
				Year:    year,
				Measure: ParseAmount(cell),
			})
		}
	}
	return out, nil
}

// reshapeLongPair passes an already-long table (explicit Month + Sales or
// Amount columns) through directly. Output shape is identical to the melt
// path. Rows whose month cell is not a month are skipped.
func (r *Reshaper) reshapeLongPair(rows [][]string, year string) (Dataset, error) {
	if len(rows) < 1 {
		return nil, fmt.Errorf("long table: missing header row")
	}

	monthCol, valueCol, ok := longPairColumns(rows[0])
	if !ok {
		return nil, fmt.Errorf("long table: header has no Month + Sales/Amount columns")
	}

	var out Dataset
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		entity := r.canonical(row[0])
		if !r.classifier.Keep(entity) {
			continue
		}
		var monthCell, valueCell string
		if monthCol < len(row) {
			monthCell = row[monthCol]
		}
		if valueCol < len(row) {
			valueCell = row[valueCol]
		}
		m, ok := ParseMonth(monthCell)
		if !ok {
			continue
		}
		out = append(out, LongRecord{
			Entity:  entity,
			Month:   m,
			Year:    year,
			Measure: ParseAmount(valueCell),
		})
	}
	return out, nil
}

// reshapeInterleaved handles exports that interleave several metric columns
// per month under a second header row (QuickBooks item summaries: Qty,
// Amount, % of Sales, ... per month block).
//
// When the metric row divides cleanly into fixed-size per-month blocks, each
// month header claims its whole block. Otherwise every metric column inherits
// the most recently seen month label (carry-forward), which tolerates the
// older export variants whose headers do not line up. Quantity-keyed tables
// are sparse, so only (qty, amount) pairs with a nonzero component emit a
// record.
func (r *Reshaper) reshapeInterleaved(rows [][]string, year string) (Dataset, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("interleaved table: needs month and metric header rows, got %d", len(rows))
	}

	monthHdr := rows[0]
	metricHdr := rows[1]
	colMonth := mapColumnsToMonths(monthHdr, metricHdr)

	// Per-month offsets of the quantity and amount sub-columns.
	qtyCol := make(map[Month]int)
	amtCol := make(map[Month]int)
	for c := 1; c < len(metricHdr); c++ {
		m, ok := colMonth[c]
		if !ok || !m.Valid() {
			continue
		}
		low := strings.ToLower(strings.TrimSpace(metricHdr[c]))
		switch {
		case strings.Contains(low, "qty"):
			qtyCol[m] = c
		case strings.Contains(low, "amount") || strings.Contains(low, "total"):
			amtCol[m] = c
		}
	}

	cellAt := func(row []string, idx int, ok bool) float64 {
		if !ok || idx >= len(row) {
			return 0
		}
		return ParseAmount(row[idx])
	}

	var out Dataset
	for _, row := range rows[2:] {
		if len(row) == 0 {
			continue
		}
		entity := r.canonical(row[0])
		if !r.classifier.Keep(entity) {
			continue
		}
		for _, m := range Months() {
			qc, qok := qtyCol[m]
			ac, aok := amtCol[m]
			qty := cellAt(row, qc, qok)
			amt := cellAt(row, ac, aok)
			if qty == 0 && amt == 0 {
				continue
			}
			out = append(out, LongRecord{
				Entity:  entity,
				Month:   m,
				Year:    year,
				Measure: amt,
				Qty:     qty,
			})
		}
	}
	return out, nil
}

// mapColumnsToMonths assigns a month to every metric column. Block mapping
// applies when the metric row is exactly blockSize columns per month-header
// cell; carry-forward is the fallback for files whose structure does not
// divide cleanly.
func mapColumnsToMonths(monthHdr, metricHdr []string) map[int]Month {
	colMonth := make(map[int]Month, len(metricHdr))

	monthCells := len(monthHdr) - 1
	metricCells := len(metricHdr) - 1
	if monthCells > 0 && metricCells > 0 && metricCells%monthCells == 0 && metricCells/monthCells >= 2 {
		blockSize := metricCells / monthCells
		for j := 0; j < monthCells; j++ {
			m, ok := ParseMonth(monthHdr[j+1])
			if !ok {
				continue // TOTAL block or similar; its columns stay unmapped
			}
			start := 1 + j*blockSize
			for c := start; c < start+blockSize && c < len(metricHdr); c++ {
				colMonth[c] = m
			}
		}
		return colMonth
	}

	var current Month
	haveCurrent := false
	for c := 1; c < len(metricHdr); c++ {
		if c < len(monthHdr) {
			if m, ok := ParseMonth(monthHdr[c]); ok {
				current = m
				haveCurrent = true
			}
		}
		if haveCurrent {
			colMonth[c] = current
		}
	}
	return colMonth
}
