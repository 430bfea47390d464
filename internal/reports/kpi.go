package reports

// Summary holds the KPI row rendered above the charts for one report view.
// Share figures are percentages of the selected-year total.
type Summary struct {
	YearTotal      float64 `json:"year_total"`
	AllYearsTotal  float64 `json:"all_years_total"`
	TopEntity      string  `json:"top_entity"`
	TopEntityTotal float64 `json:"top_entity_total"`
	TopEntityShare float64 `json:"top_entity_share"`
	ActiveEntities int     `json:"active_entities"`
	TopNShare      float64 `json:"top_n_share"`
}

// BuildSummary computes the KPIs for one selected year. yearDS is the
// selected-year slice of the dataset, allDS the full multi-year dataset, n
// the configured top-N size. An empty year yields a zero Summary with
// TopEntity left blank.
func BuildSummary(yearDS, allDS Dataset, n int) (Summary, error) {
	s := Summary{
		YearTotal:     yearDS.Total(),
		AllYearsTotal: allDS.Total(),
	}
	if len(yearDS) == 0 {
		return s, nil
	}

	totals, err := Aggregate(yearDS, DimEntity)
	if err != nil {
		return Summary{}, err
	}
	s.ActiveEntities = len(totals.Rows)

	if n > len(totals.Rows) {
		n = len(totals.Rows)
	}
	if n < 1 {
		n = 1
	}
	top, err := TopN(totals, n)
	if err != nil {
		return Summary{}, err
	}

	byEntity := make(map[string]float64, len(totals.Rows))
	for _, r := range totals.Rows {
		byEntity[r.Entity] = r.Measure
	}

	s.TopEntity = top[0]
	s.TopEntityTotal = byEntity[top[0]]

	var topNTotal float64
	for _, e := range top {
		topNTotal += byEntity[e]
	}
	if s.YearTotal != 0 {
		s.TopEntityShare = s.TopEntityTotal / s.YearTotal * 100
		s.TopNShare = topNTotal / s.YearTotal * 100
	}
	return s, nil
}
