package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_CanonicalYearOrder(t *testing.T) {
	sets := []YearSet{
		{Year: "2025", Records: Dataset{{Entity: "A", Month: Jan, Year: "2025", Measure: 3}}},
		{Year: "2023", Records: Dataset{{Entity: "A", Month: Jan, Year: "2023", Measure: 1}}},
		{Year: "2024", Records: Dataset{{Entity: "A", Month: Jan, Year: "2024", Measure: 2}}},
	}

	ds := Merge([]string{"2023", "2024", "2025"}, sets)

	assert.Equal(t, []string{"2023", "2024", "2025"}, ds.Years(), "caller may supply years out of order")
	assert.InDelta(t, 6, ds.Total(), 1e-9)
}

func TestMerge_UnlistedYearsFollow(t *testing.T) {
	sets := []YearSet{
		{Year: "2022", Records: Dataset{{Entity: "A", Month: Jan, Year: "2022", Measure: 1}}},
		{Year: "2024", Records: Dataset{{Entity: "A", Month: Jan, Year: "2024", Measure: 2}}},
	}

	ds := Merge([]string{"2024", "2025"}, sets)
	assert.Equal(t, []string{"2024", "2022"}, ds.Years())
}

func TestMerge_PreservesYearTags(t *testing.T) {
	sets := []YearSet{
		{Year: "2023", Records: Dataset{
			{Entity: "A", Month: Jan, Year: "2023", Measure: 1},
			{Entity: "B", Month: Feb, Year: "2023", Measure: 2},
		}},
	}

	ds := Merge([]string{"2023"}, sets)
	require.Len(t, ds, 2)
	for _, r := range ds {
		assert.Equal(t, "2023", r.Year)
	}
}

func TestDataset_Filters(t *testing.T) {
	ds := Dataset{
		{Entity: "LABOR (LABOR)", Month: Jan, Year: "2023", Measure: 10},
		{Entity: "LABOR-PF Install", Month: Jan, Year: "2023", Measure: 20},
		{Entity: "FILTER-A", Month: Jan, Year: "2023", Measure: 30},
		{Entity: "FILTER-A", Month: Jan, Year: "2024", Measure: 40},
	}

	t.Run("year filter", func(t *testing.T) {
		got := ds.FilterYear("2024")
		require.Len(t, got, 1)
		assert.InDelta(t, 40, got.Total(), 1e-9)
	})

	t.Run("prefix exclusion", func(t *testing.T) {
		got := ds.ExcludePrefixes([]string{"LABOR"})
		assert.InDelta(t, 70, got.Total(), 1e-9)
	})

	t.Run("nil prefixes keep everything", func(t *testing.T) {
		assert.Len(t, ds.ExcludePrefixes(nil), 4)
	})

	t.Run("entity membership", func(t *testing.T) {
		got := ds.FilterEntities([]string{"FILTER-A"})
		assert.Len(t, got, 2)
	})
}
