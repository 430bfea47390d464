package reports

import "strings"

// DetectShape classifies a raw table into one of the known input layouts.
// The decision order is fixed and intentionally conservative:
//
//  1. InterleavedMetricBlock: a second header row exists whose cells name
//     per-month metrics ("Qty", "Amount", ...) and that row is wider than the
//     month header row. QuickBooks item summaries look like this.
//  2. ExplicitLongPair: the first header row has a "Month" column and a
//     "Sales" or "Amount" column.
//  3. WideMonthly: the fallback for everything else.
//
// The fallback means an unrecognizable table is treated as wide; its
// non-month columns are then skipped during melting rather than rejected.
func DetectShape(rows [][]string) Shape {
	if len(rows) == 0 {
		return ShapeWideMonthly
	}

	if len(rows) >= 2 && isMetricHeader(rows[1]) && len(rows[1]) > len(rows[0]) {
		return ShapeInterleavedMetricBlock
	}

	if hasLongPairHeader(rows[0]) {
		return ShapeExplicitLongPair
	}

	return ShapeWideMonthly
}

// isMetricHeader reports whether a row looks like the per-month metric header
// of an interleaved export: past the entity column, its non-empty cells name
// metrics rather than months.
func isMetricHeader(row []string) bool {
	if len(row) < 2 {
		return false
	}
	metrics := 0
	for _, cell := range row[1:] {
		low := strings.ToLower(strings.TrimSpace(cell))
		if low == "" {
			continue
		}
		if strings.Contains(low, "qty") || strings.Contains(low, "amount") ||
			strings.Contains(low, "price") || strings.Contains(low, "% of") ||
			strings.Contains(low, "cogs") {
			metrics++
		}
	}
	return metrics >= 2
}

// hasLongPairHeader reports whether the header row carries an explicit
// Month + Sales/Amount column pair.
func hasLongPairHeader(header []string) bool {
	var hasMonth, hasValue bool
	for _, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "month":
			hasMonth = true
		case "sales", "amount":
			hasValue = true
		}
	}
	return hasMonth && hasValue
}

// longPairColumns returns the indexes of the Month column and the value
// column (Sales preferred over Amount) in an explicit-long header.
func longPairColumns(header []string) (monthCol, valueCol int, ok bool) {
	monthCol, valueCol = -1, -1
	amountCol := -1
	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "month":
			monthCol = i
		case "sales":
			valueCol = i
		case "amount":
			amountCol = i
		}
	}
	if valueCol == -1 {
		valueCol = amountCol
	}
	return monthCol, valueCol, monthCol >= 0 && valueCol >= 0
}
