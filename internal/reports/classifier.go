package reports

import "strings"

// Default label sets mirroring the QuickBooks summary exports these reports
// come from. Both are overridable per report because the grouping buckets are
// business data, not pipeline invariants.
var (
	DefaultGroupingBuckets = []string{"uncategorized", "inventory", "parts", "other charges"}
	DefaultHeaderEchoes    = []string{"items", "item", "name", "description"}
)

// Classifier decides whether a raw row's leading label is a real entity or a
// grouping header, subtotal, or grand-total line to discard. It is a pure
// function of the label and must run before any numeric aggregation: a total
// row that slips through silently doubles every downstream sum.
type Classifier struct {
	groupingBuckets map[string]struct{}
	headerEchoes    map[string]struct{}
}

// NewClassifier builds a classifier with the given grouping-bucket and
// header-echo label sets. Nil slices fall back to the QuickBooks defaults;
// pass empty non-nil slices to disable a rule entirely.
func NewClassifier(groupingBuckets, headerEchoes []string) *Classifier {
	if groupingBuckets == nil {
		groupingBuckets = DefaultGroupingBuckets
	}
	if headerEchoes == nil {
		headerEchoes = DefaultHeaderEchoes
	}
	c := &Classifier{
		groupingBuckets: make(map[string]struct{}, len(groupingBuckets)),
		headerEchoes:    make(map[string]struct{}, len(headerEchoes)),
	}
	for _, b := range groupingBuckets {
		c.groupingBuckets[strings.ToLower(strings.TrimSpace(b))] = struct{}{}
	}
	for _, e := range headerEchoes {
		c.headerEchoes[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return c
}

// Keep reports whether the row carrying this label is a real data row.
// Discard rules are applied in order, case-insensitively:
//
//  1. empty or whitespace-only label
//  2. label is a configured grouping bucket ("Inventory", "Parts", ...)
//  3. label is exactly "total" or "grand total"
//  4. label starts with "total " (per-group subtotals like "Total Filters")
//  5. label contains "subtotal"
//  6. label is a header echo ("Item", "Name", "Description", ...)
func (c *Classifier) Keep(label string) bool {
	s := strings.TrimSpace(label)
	if s == "" {
		return false
	}
	low := strings.ToLower(s)

	if _, ok := c.groupingBuckets[low]; ok {
		return false
	}
	if low == "total" || low == "grand total" {
		return false
	}
	if strings.HasPrefix(low, "total ") {
		return false
	}
	if strings.Contains(low, "subtotal") {
		return false
	}
	if _, ok := c.headerEchoes[low]; ok {
		return false
	}
	return true
}
