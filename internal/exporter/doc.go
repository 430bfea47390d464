// Package exporter renders report views for download: UTF-8 BOM-prefixed
// CSV for spreadsheet imports, and a styled Excel workbook with the KPI
// summary, pivoted data sheets, and a ranking chart.
package exporter
