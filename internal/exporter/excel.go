package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"salesdash/internal/reports"
	"salesdash/internal/services"
)

const (
	summarySheet    = "Summary"
	monthlySheet    = "Monthly"
	comparisonSheet = "By Year"
)

// Workbook builds an Excel workbook for one report view: a KPI summary
// sheet, the selected year's month-by-entity pivot with a column chart, and
// the cross-year entity comparison. The caller writes or streams the file.
func Workbook(view *services.ReportView) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", summarySheet)

	if err := writeSummary(f, view); err != nil {
		return nil, err
	}
	if err := writeMonthly(f, view); err != nil {
		return nil, err
	}
	if err := writeComparison(f, view); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSummary(f *excelize.File, view *services.ReportView) error {
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return fmt.Errorf("summary style: %w", err)
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("summary style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("summary style: %w", err)
	}

	f.SetCellValue(summarySheet, "A1", fmt.Sprintf("%s - %s", view.Title, view.Year))
	f.SetCellStyle(summarySheet, "A1", "A1", titleStyle)

	kpis := []struct {
		label string
		value interface{}
		money bool
	}{
		{fmt.Sprintf("Total %s (%s)", view.MeasureLabel, view.Year), view.Summary.YearTotal, true},
		{fmt.Sprintf("Total %s (all years)", view.MeasureLabel), view.Summary.AllYearsTotal, true},
		{fmt.Sprintf("Top %s", view.EntityLabel), view.Summary.TopEntity, false},
		{fmt.Sprintf("Top %s total", view.EntityLabel), view.Summary.TopEntityTotal, true},
		{fmt.Sprintf("Top %s share %%", view.EntityLabel), view.Summary.TopEntityShare, false},
		{fmt.Sprintf("Active %ss", view.EntityLabel), view.Summary.ActiveEntities, false},
		{fmt.Sprintf("Top %d share %%", view.TopN), view.Summary.TopNShare, false},
	}
	for i, kpi := range kpis {
		row := i + 3
		f.SetCellValue(summarySheet, cell(1, row), kpi.label)
		f.SetCellValue(summarySheet, cell(2, row), kpi.value)
		f.SetCellStyle(summarySheet, cell(1, row), cell(1, row), labelStyle)
		if kpi.money {
			f.SetCellStyle(summarySheet, cell(2, row), cell(2, row), moneyStyle)
		}
	}

	f.SetColWidth(summarySheet, "A", "A", 32)
	f.SetColWidth(summarySheet, "B", "B", 18)
	return nil
}

// writeMonthly pivots the selected year's month×entity table into months as
// rows and the top-N entities as columns, then charts the entity totals.
func writeMonthly(f *excelize.File, view *services.ReportView) error {
	if _, err := f.NewSheet(monthlySheet); err != nil {
		return fmt.Errorf("monthly sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("monthly style: %w", err)
	}

	byCell := make(map[reports.Month]map[string]float64)
	present := make(map[reports.Month]bool)
	for _, row := range view.MonthlyByEntity.Rows {
		if byCell[row.Month] == nil {
			byCell[row.Month] = make(map[string]float64)
		}
		byCell[row.Month][row.Entity] += row.Measure
		present[row.Month] = true
	}

	f.SetCellValue(monthlySheet, cell(1, 1), "Month")
	for i, entity := range view.TopEntities {
		f.SetCellValue(monthlySheet, cell(i+2, 1), entity)
	}
	f.SetCellStyle(monthlySheet, cell(1, 1), cell(len(view.TopEntities)+1, 1), headerStyle)

	rowIdx := 2
	for _, m := range reports.Months() {
		if !present[m] {
			continue
		}
		f.SetCellValue(monthlySheet, cell(1, rowIdx), m.String())
		for i, entity := range view.TopEntities {
			f.SetCellValue(monthlySheet, cell(i+2, rowIdx), byCell[m][entity])
		}
		rowIdx++
	}
	lastRow := rowIdx - 1

	// Totals chart: one series per entity, months on the category axis.
	var series []excelize.ChartSeries
	for i := range view.TopEntities {
		col, _ := excelize.ColumnNumberToName(i + 2)
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$%s$1", monthlySheet, col),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", monthlySheet, lastRow),
			Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", monthlySheet, col, col, lastRow),
		})
	}
	if len(series) > 0 && lastRow >= 2 {
		chartCell := cell(len(view.TopEntities)+3, 2)
		err := f.AddChart(monthlySheet, chartCell, &excelize.Chart{
			Type:   excelize.Col,
			Series: series,
			Title:  []excelize.RichTextRun{{Text: fmt.Sprintf("%s by %s, %s", view.MeasureLabel, view.EntityLabel, view.Year)}},
		})
		if err != nil {
			return fmt.Errorf("monthly chart: %w", err)
		}
	}

	f.SetColWidth(monthlySheet, "A", "A", 10)
	return nil
}

// writeComparison lays out entities as rows and years as columns, membership
// taken from the all-years top-N already baked into the view.
func writeComparison(f *excelize.File, view *services.ReportView) error {
	if _, err := f.NewSheet(comparisonSheet); err != nil {
		return fmt.Errorf("comparison sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("comparison style: %w", err)
	}

	byEntity := make(map[string]map[string]float64)
	var entities []string
	for _, row := range view.YearEntityComparison.Rows {
		if byEntity[row.Entity] == nil {
			byEntity[row.Entity] = make(map[string]float64)
			entities = append(entities, row.Entity)
		}
		byEntity[row.Entity][row.Year] += row.Measure
	}

	f.SetCellValue(comparisonSheet, cell(1, 1), view.EntityLabel)
	for i, year := range view.AvailableYears {
		f.SetCellValue(comparisonSheet, cell(i+2, 1), year)
	}
	f.SetCellStyle(comparisonSheet, cell(1, 1), cell(len(view.AvailableYears)+1, 1), headerStyle)

	for r, entity := range entities {
		f.SetCellValue(comparisonSheet, cell(1, r+2), entity)
		for c, year := range view.AvailableYears {
			f.SetCellValue(comparisonSheet, cell(c+2, r+2), byEntity[entity][year])
		}
	}

	totalRow := len(entities) + 2
	f.SetCellValue(comparisonSheet, cell(1, totalRow), "Year total")
	f.SetCellStyle(comparisonSheet, cell(1, totalRow), cell(1, totalRow), headerStyle)
	yearTotals := make(map[string]float64, len(view.YearTotals.Rows))
	for _, row := range view.YearTotals.Rows {
		yearTotals[row.Year] = row.Measure
	}
	for c, year := range view.AvailableYears {
		f.SetCellValue(comparisonSheet, cell(c+2, totalRow), yearTotals[year])
	}

	if len(view.AvailableYears) > 1 {
		lastCol, _ := excelize.ColumnNumberToName(len(view.AvailableYears) + 1)
		err := f.AddChart(comparisonSheet, cell(len(view.AvailableYears)+3, 2), &excelize.Chart{
			Type: excelize.Pie,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("'%s'!$A$%d", comparisonSheet, totalRow),
				Categories: fmt.Sprintf("'%s'!$B$1:$%s$1", comparisonSheet, lastCol),
				Values:     fmt.Sprintf("'%s'!$B$%d:$%s$%d", comparisonSheet, totalRow, lastCol, totalRow),
			}},
			Title: []excelize.RichTextRun{{Text: fmt.Sprintf("%s share by year", view.MeasureLabel)}},
		})
		if err != nil {
			return fmt.Errorf("comparison chart: %w", err)
		}
	}

	f.SetColWidth(comparisonSheet, "A", "A", 32)
	return nil
}

// cell converts 1-based coordinates to an A1 reference. Coordinates here are
// always valid, so the conversion cannot fail.
func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
