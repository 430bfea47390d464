package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wideFixture() RawTable {
	return RawTable{
		Shape: ShapeWideMonthly,
		Rows: [][]string{
			{"Customer", "Jan", "Feb", "Mar", "TOTAL"},
			{"Acme", "100", "200", "300", "600"},
			{"Total", "100", "200", "300", "600"},
		},
	}
}

func TestReshape_WideEndToEnd(t *testing.T) {
	r := NewReshaper(nil, nil)

	ds, err := r.Reshape(wideFixture(), "2023")
	require.NoError(t, err)

	want := Dataset{
		{Entity: "Acme", Month: Jan, Year: "2023", Measure: 100},
		{Entity: "Acme", Month: Feb, Year: "2023", Measure: 200},
		{Entity: "Acme", Month: Mar, Year: "2023", Measure: 300},
	}
	assert.Equal(t, want, ds, "Total row discarded, TOTAL column skipped")
}

func TestReshape_Idempotent(t *testing.T) {
	r := NewReshaper(nil, nil)

	first, err := r.Reshape(wideFixture(), "2023")
	require.NoError(t, err)
	second, err := r.Reshape(wideFixture(), "2023")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestReshape_ConservationOfTotal(t *testing.T) {
	table := RawTable{
		Shape: ShapeWideMonthly,
		Rows: [][]string{
			{"Vendor", "Jan 24", "Feb 24", "Mar 24", "Q1", "TOTAL"},
			{"Acme Filters", "$1,000", "", "(250)", "999", "750"},
			{"Beta Supply", "-", "50.5", "100", "999", "150.5"},
			{"Total Acme Filters", "5000", "5000", "5000", "999", "15000"},
			{"Subtotal - Parts", "1", "1", "1", "999", "3"},
		},
	}

	r := NewReshaper(nil, nil)
	ds, err := r.Reshape(table, "2024")
	require.NoError(t, err)

	// Sum of kept rows' month cells: 1000 + 0 - 250 + 0 + 50.5 + 100.
	// Q1 and TOTAL columns are not months; total/subtotal rows are dropped.
	assert.InDelta(t, 900.5, ds.Total(), 1e-9)
	assert.Len(t, ds, 6, "one record per kept row per month column, zeros included")
}

func TestReshape_LongPairMatchesWide(t *testing.T) {
	wide := RawTable{
		Shape: ShapeWideMonthly,
		Rows: [][]string{
			{"Customer", "Jan", "Feb"},
			{"Acme", "10", "20"},
		},
	}
	long := RawTable{
		Shape: ShapeExplicitLongPair,
		Rows: [][]string{
			{"Customer", "Month", "Sales"},
			{"Acme", "Jan 23", "10"},
			{"Acme", "Feb 23", "20"},
		},
	}

	r := NewReshaper(nil, nil)
	fromWide, err := r.Reshape(wide, "2023")
	require.NoError(t, err)
	fromLong, err := r.Reshape(long, "2023")
	require.NoError(t, err)

	assert.Equal(t, fromWide, fromLong, "both code paths produce identically-shaped output")
}

func TestReshape_LongPairSkipsNonMonths(t *testing.T) {
	table := RawTable{
		Shape: ShapeExplicitLongPair,
		Rows: [][]string{
			{"Customer", "Month", "Amount"},
			{"Acme", "Jan", "10"},
			{"Acme", "Q1", "999"},
			{"Total", "Feb", "10"},
		},
	}

	r := NewReshaper(nil, nil)
	ds, err := r.Reshape(table, "2023")
	require.NoError(t, err)

	require.Len(t, ds, 1)
	assert.Equal(t, LongRecord{Entity: "Acme", Month: Jan, Year: "2023", Measure: 10}, ds[0])
}

func TestReshape_AliasCollapsing(t *testing.T) {
	aliases := map[string]string{
		"0000587428":  "Childrens Hospital",
		"Total Childrens Hospital": "Childrens Hospital",
	}
	table := RawTable{
		Shape: ShapeWideMonthly,
		Rows: [][]string{
			{"Customer", "Jan"},
			{"0000587428", "100"},
			{"Total Childrens Hospital", "50"},
			{"Acme", "25"},
		},
	}

	r := NewReshaper(nil, aliases)
	ds, err := r.Reshape(table, "2023")
	require.NoError(t, err)

	totals, err := Aggregate(ds, DimEntity)
	require.NoError(t, err)
	require.Len(t, totals.Rows, 2)
	assert.Equal(t, "Childrens Hospital", totals.Rows[0].Entity)
	assert.InDelta(t, 150, totals.Rows[0].Measure, 1e-9, "alias rollup merges before total-row discard")
}

func interleavedFixture() RawTable {
	// QuickBooks item summary layout: month header row plus a metric row of
	// two columns (Qty, Amount) per month block, with a trailing TOTAL block.
	return RawTable{
		Shape: ShapeInterleavedMetricBlock,
		Rows: [][]string{
			{"", "Jan 24", "Feb 24", "TOTAL"},
			{"Item", "Qty", "Amount", "Qty", "Amount", "Qty", "Amount"},
			{"FILTER-A", "2", "200", "1", "100", "3", "300"},
			{"Parts", "", "", "", "", "", ""},
			{"Total FILTER-A", "2", "200", "1", "100", "3", "300"},
			{"SPARSE-B", "", "", "4", "40", "4", "40"},
		},
	}
}

func TestReshape_InterleavedBlockMapping(t *testing.T) {
	r := NewReshaper(nil, nil)
	ds, err := r.Reshape(interleavedFixture(), "2024")
	require.NoError(t, err)

	want := Dataset{
		{Entity: "FILTER-A", Month: Jan, Year: "2024", Measure: 200, Qty: 2},
		{Entity: "FILTER-A", Month: Feb, Year: "2024", Measure: 100, Qty: 1},
		{Entity: "SPARSE-B", Month: Feb, Year: "2024", Measure: 40, Qty: 4},
	}
	assert.Equal(t, want, ds, "TOTAL block unmapped, sparse zero months omitted")
}

func TestReshape_InterleavedCarryForward(t *testing.T) {
	// Metric row does not divide into fixed-size blocks: three metric
	// columns under Jan, two under Feb. Columns inherit the most recently
	// seen month label.
	table := RawTable{
		Shape: ShapeInterleavedMetricBlock,
		Rows: [][]string{
			{"", "Jan", "", "", "Feb", ""},
			{"Item", "Qty", "Amount", "% of Sales", "Qty", "Amount"},
			{"FILTER-A", "2", "200", "10%", "1", "100"},
		},
	}

	r := NewReshaper(nil, nil)
	ds, err := r.Reshape(table, "2024")
	require.NoError(t, err)

	want := Dataset{
		{Entity: "FILTER-A", Month: Jan, Year: "2024", Measure: 200, Qty: 2},
		{Entity: "FILTER-A", Month: Feb, Year: "2024", Measure: 100, Qty: 1},
	}
	assert.Equal(t, want, ds)
}

func TestReshape_InterleavedNeedsTwoHeaderRows(t *testing.T) {
	table := RawTable{
		Shape: ShapeInterleavedMetricBlock,
		Rows:  [][]string{{"Item", "Jan", "Feb"}},
	}

	r := NewReshaper(nil, nil)
	_, err := r.Reshape(table, "2024")
	assert.Error(t, err)
}

func TestDetectShape(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want Shape
	}{
		{
			name: "wide monthly",
			rows: [][]string{{"Customer", "Jan", "Feb", "TOTAL"}, {"Acme", "1", "2", "3"}},
			want: ShapeWideMonthly,
		},
		{
			name: "explicit long pair",
			rows: [][]string{{"Customer", "Month", "Sales"}, {"Acme", "Jan", "1"}},
			want: ShapeExplicitLongPair,
		},
		{
			name: "interleaved metric blocks",
			rows: interleavedFixture().Rows,
			want: ShapeInterleavedMetricBlock,
		},
		{
			name: "empty table falls back to wide",
			rows: nil,
			want: ShapeWideMonthly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectShape(tt.rows))
		})
	}
}

func TestReshape_AutoDetect(t *testing.T) {
	table := wideFixture()
	table.Shape = ShapeAuto

	r := NewReshaper(nil, nil)
	ds, err := r.Reshape(table, "2023")
	require.NoError(t, err)
	assert.Len(t, ds, 3)
}
