package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entityTotals(t *testing.T) *AggregateTable {
	t.Helper()
	ds := Dataset{
		{Entity: "Acme", Month: Jan, Year: "2023", Measure: 500},
		{Entity: "Beta", Month: Jan, Year: "2023", Measure: 300},
		{Entity: "Gamma", Month: Jan, Year: "2023", Measure: 300},
		{Entity: "Delta", Month: Jan, Year: "2023", Measure: 100},
	}
	table, err := Aggregate(ds, DimEntity)
	require.NoError(t, err)
	return table
}

func TestTopN_Ranking(t *testing.T) {
	top, err := TopN(entityTotals(t), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Beta"}, top, "tie between Beta and Gamma breaks by input order")
}

func TestTopN_PrefixProperty(t *testing.T) {
	totals := entityTotals(t)
	for n := 1; n < 4; n++ {
		smaller, err := TopN(totals, n)
		require.NoError(t, err)
		larger, err := TopN(totals, n+1)
		require.NoError(t, err)
		assert.Equal(t, smaller, larger[:n], "TopN(n) is a prefix of TopN(n+1)")
	}
}

func TestTopN_Truncation(t *testing.T) {
	top, err := TopN(entityTotals(t), 50)
	require.NoError(t, err)
	assert.Len(t, top, 4, "truncated to distinct entity count")
}

func TestTopN_InvalidN(t *testing.T) {
	_, err := TopN(entityTotals(t), 0)
	assert.Error(t, err)
	_, err = TopN(entityTotals(t), -3)
	assert.Error(t, err)
}

func TestTopN_MembershipFiltering(t *testing.T) {
	// The decoupling the selector exists for: rank by all-years totals, then
	// cut a per-year breakdown down to that membership.
	ds := Dataset{
		{Entity: "Acme", Month: Jan, Year: "2023", Measure: 100},
		{Entity: "Beta", Month: Jan, Year: "2023", Measure: 900},
		{Entity: "Acme", Month: Jan, Year: "2024", Measure: 900},
		{Entity: "Beta", Month: Jan, Year: "2024", Measure: 50},
	}
	overall, err := Aggregate(ds, DimEntity)
	require.NoError(t, err)
	top, err := TopN(overall, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"Acme"}, top, "Acme leads on all-years total")

	byYear, err := Aggregate(ds, DimYear, DimEntity)
	require.NoError(t, err)
	filtered := byYear.FilterEntities(top)

	require.Len(t, filtered.Rows, 2)
	assert.InDelta(t, 100, filtered.Rows[0].Measure, 1e-9, "2023 row survives even though Acme was not top there")
}
