package reports

import (
	"fmt"
	"strings"
)

// Month is a closed enumeration of the twelve calendar months. Keeping it a
// fixed enum (rather than a free-form string) pins the chart category order
// and removes a whole class of ordering/typo bugs.
type Month int

const (
	Jan Month = iota + 1
	Feb
	Mar
	Apr
	May
	Jun
	Jul
	Aug
	Sep
	Oct
	Nov
	Dec
)

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// String returns the canonical 3-letter abbreviation.
func (m Month) String() string {
	if m < Jan || m > Dec {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return monthNames[m-1]
}

// Valid reports whether m is one of the twelve months.
func (m Month) Valid() bool {
	return m >= Jan && m <= Dec
}

// Months lists the twelve months in calendar order.
func Months() []Month {
	out := make([]Month, Dec)
	for i := range out {
		out[i] = Month(i + 1)
	}
	return out
}

// ParseMonth normalizes a source column label ("Jan 23", "JAN-2023",
// "January") to its month by taking the first three characters. The second
// return value is false when the label is not a month at all (for example
// "Q1" or "TOTAL"), which callers treat as "not a month column" rather than
// an error.
func ParseMonth(label string) (Month, bool) {
	s := strings.TrimSpace(label)
	if len(s) < 3 {
		return 0, false
	}
	s = strings.ToUpper(s[:1]) + strings.ToLower(s[1:3])
	for i, name := range monthNames {
		if s == name {
			return Month(i + 1), true
		}
	}
	return 0, false
}

// LongRecord is one normalized fact: an entity's measure for one month of one
// year. Year stays a discrete string label so charts treat years as distinct
// series rather than a continuous axis. Measure and Qty are never NaN;
// missing or unparseable cells normalize to zero before a record is built.
type LongRecord struct {
	Entity  string  `json:"entity"`
	Month   Month   `json:"month"`
	Year    string  `json:"year"`
	Measure float64 `json:"measure"`
	Qty     float64 `json:"qty,omitempty"`
}

// Dataset is an ordered multiset of LongRecords spanning all loaded years of
// one report. It is recomputed from scratch on each load and never mutated
// afterwards.
type Dataset []LongRecord

// Years returns the distinct year labels in first-appearance order.
func (d Dataset) Years() []string {
	seen := make(map[string]struct{}, 4)
	var out []string
	for _, r := range d {
		if _, ok := seen[r.Year]; !ok {
			seen[r.Year] = struct{}{}
			out = append(out, r.Year)
		}
	}
	return out
}

// FilterYear returns the subset of records tagged with the given year.
func (d Dataset) FilterYear(year string) Dataset {
	out := make(Dataset, 0, len(d))
	for _, r := range d {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// FilterEntities returns the subset of records whose entity is in keep.
func (d Dataset) FilterEntities(keep []string) Dataset {
	set := make(map[string]struct{}, len(keep))
	for _, e := range keep {
		set[e] = struct{}{}
	}
	out := make(Dataset, 0, len(d))
	for _, r := range d {
		if _, ok := set[r.Entity]; ok {
			out = append(out, r)
		}
	}
	return out
}

// ExcludePrefixes returns the subset of records whose upper-cased entity
// label does not start with any of the given prefixes. Used for the
// exclude-labor style toggles; the prefix list is configuration owned by the
// caller.
func (d Dataset) ExcludePrefixes(prefixes []string) Dataset {
	if len(prefixes) == 0 {
		return d
	}
	out := make(Dataset, 0, len(d))
	for _, r := range d {
		label := strings.ToUpper(strings.TrimSpace(r.Entity))
		excluded := false
		for _, p := range prefixes {
			if strings.HasPrefix(label, strings.ToUpper(p)) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, r)
		}
	}
	return out
}

// Total sums Measure over all records.
func (d Dataset) Total() float64 {
	var sum float64
	for _, r := range d {
		sum += r.Measure
	}
	return sum
}

// Shape identifies which of the known input layouts a raw table uses. The
// three variants form a small closed set; DetectShape picks one explicitly
// instead of letting column sniffing leak into the reshape control flow.
type Shape int

const (
	// ShapeAuto asks the reshaper to run DetectShape on the table.
	ShapeAuto Shape = iota
	// ShapeWideMonthly is one row per entity with one column per month and
	// an optional trailing total column.
	ShapeWideMonthly
	// ShapeExplicitLongPair is an already-long table with explicit Month and
	// Sales/Amount columns.
	ShapeExplicitLongPair
	// ShapeInterleavedMetricBlock interleaves several metric columns
	// (quantity, amount, ...) per month under a second header row.
	ShapeInterleavedMetricBlock
)

// String returns the config-file spelling of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeAuto:
		return "auto"
	case ShapeWideMonthly:
		return "wide"
	case ShapeExplicitLongPair:
		return "long"
	case ShapeInterleavedMetricBlock:
		return "interleaved"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ParseShape parses the config-file spelling of a shape.
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ShapeAuto, nil
	case "wide":
		return ShapeWideMonthly, nil
	case "long":
		return ShapeExplicitLongPair, nil
	case "interleaved":
		return ShapeInterleavedMetricBlock, nil
	default:
		return 0, fmt.Errorf("unknown table shape %q", s)
	}
}

// RawTable is an entity-by-month matrix as loaded from a CSV export. Rows
// includes the header row(s); the first column is the entity label. Shape may
// be ShapeAuto to let the reshaper classify the layout.
type RawTable struct {
	Rows  [][]string
	Shape Shape
}

// Dimension names one grouping axis of the aggregator.
type Dimension string

const (
	DimEntity Dimension = "entity"
	DimMonth  Dimension = "month"
	DimYear   Dimension = "year"
)

// AggregateRow is one row of an AggregateTable: the values of the grouped
// dimensions plus the summed measures. Dimensions not grouped on are left at
// their zero value.
type AggregateRow struct {
	Entity  string  `json:"entity,omitempty"`
	Month   Month   `json:"month,omitempty"`
	Year    string  `json:"year,omitempty"`
	Measure float64 `json:"measure"`
	Qty     float64 `json:"qty,omitempty"`
}

// AggregateTable is an entity×dimension summary: one row per distinct
// combination of the grouped dimensions, with Measure summed over all
// matching records. Row order is deterministic (year by dataset order, month
// by calendar, entity by first appearance) so categorical chart axes are
// stable. Never mutated after creation.
type AggregateTable struct {
	Dims []Dimension    `json:"dims"`
	Rows []AggregateRow `json:"rows"`
}
