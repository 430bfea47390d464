package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"salesdash/internal/services"
)

// CSVWriter streams report views as CSV.
type CSVWriter struct {
	// BOMPrefix prepends a UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
}

// NewCSVWriter creates a CSV writer with Excel-friendly defaults.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{BOMPrefix: true}
}

// WriteView writes the selected year's monthly breakdown in long form, one
// row per (month, entity) with the summed measure and quantity.
func (w *CSVWriter) WriteView(out io.Writer, view *services.ReportView) error {
	if w.BOMPrefix {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(out)
	header := []string{"Year", "Month", view.EntityLabel, view.MeasureLabel, "Qty"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range view.MonthlyByEntity.Rows {
		record := []string{
			view.Year,
			row.Month.String(),
			row.Entity,
			formatAmount(row.Measure),
			formatAmount(row.Qty),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
