package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// ReportDef describes one report: where its per-year CSVs live, how their
// tables are shaped, and the business label sets the pipeline applies. All of
// this is data owned by whoever configures the dashboard; the pipeline itself
// has no opinion about which labels are grouping buckets or which customers
// roll up together.
type ReportDef struct {
	Name            string            `yaml:"-"`
	Title           string            `yaml:"title"`
	EntityLabel     string            `yaml:"entity_label"`
	MeasureLabel    string            `yaml:"measure_label"`
	Shape           string            `yaml:"shape"` // auto | wide | long | interleaved
	Files           map[string]string `yaml:"files"` // year label -> file name under DataDir
	GroupingBuckets []string          `yaml:"grouping_buckets,omitempty"`
	HeaderEchoes    []string          `yaml:"header_echoes,omitempty"`
	Aliases         map[string]string `yaml:"aliases,omitempty"`
	ExcludePrefixes []string          `yaml:"exclude_prefixes,omitempty"`
}

// ReportSet is the full parsed definition file.
type ReportSet struct {
	YearOrder []string             `yaml:"year_order"`
	Reports   map[string]ReportDef `yaml:"reports"`
}

// LoadReportSet reads the report definition YAML, falling back to the
// built-in AFC defaults when no file is configured.
func LoadReportSet(rc ReportsConfig) (*ReportSet, error) {
	if rc.DefinitionFile == "" {
		return DefaultReportSet(), nil
	}

	data, err := os.ReadFile(rc.DefinitionFile)
	if err != nil {
		return nil, fmt.Errorf("read report definitions: %w", err)
	}
	var set ReportSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse report definitions: %w", err)
	}
	if len(set.Reports) == 0 {
		return nil, fmt.Errorf("report definitions: no reports defined")
	}
	for name, def := range set.Reports {
		def.Name = name
		if len(def.Files) == 0 {
			return nil, fmt.Errorf("report %q: no files configured", name)
		}
		set.Reports[name] = def
	}
	return &set, nil
}

// FilePath resolves a report file name against the data directory.
func FilePath(rc ReportsConfig, fileName string) string {
	if filepath.IsAbs(fileName) {
		return fileName
	}
	return filepath.Join(rc.DataDir, fileName)
}

// DefaultReportSet returns the four AFC reports the dashboard shipped with.
// The CHLA alias rollup and the labor prefixes are deliberately data here,
// not code: successive drafts of the original pages disagreed on both.
func DefaultReportSet() *ReportSet {
	chlaAliases := map[string]string{
		"0000587428":                              "Childrens Hospital of Los Angeles",
		"0000683567":                              "Childrens Hospital of Los Angeles",
		"0000683569":                              "Childrens Hospital of Los Angeles",
		"Childrens Hospital of Los Angeles - Other": "Childrens Hospital of Los Angeles",
		"Total Childrens Hospital of Los Angeles":   "Childrens Hospital of Los Angeles",
	}

	return &ReportSet{
		YearOrder: []string{"2023", "2024", "2025"},
		Reports: map[string]ReportDef{
			"sales-by-type": {
				Name:         "sales-by-type",
				Title:        "Sales by Customer Type",
				EntityLabel:  "Customer Type",
				MeasureLabel: "Sales",
				Shape:        "wide",
				Files: map[string]string{
					"2023": "AFC SALES BY CUSTOMER TYPE 2023.CSV",
					"2024": "AFC SALES BY CUSTOMER TYPE 2024.CSV",
					"2025": "AFC SALES BY CUSTOMER TYPE 2025.CSV",
				},
			},
			"sales-by-customer": {
				Name:         "sales-by-customer",
				Title:        "Sales by Customer",
				EntityLabel:  "Customer",
				MeasureLabel: "Sales",
				Shape:        "auto",
				Files: map[string]string{
					"2023": "AFC SALES BY CUSTOMER SUMMARY 2023.CSV",
					"2024": "AFC SALES BY CUSTOMER SUMMARY 2024.CSV",
					"2025": "AFC SALES BY CUSTOMER SUMMARY 2025.CSV",
				},
				Aliases: chlaAliases,
			},
			"sales-by-item": {
				Name:         "sales-by-item",
				Title:        "Sales by Item (SKU)",
				EntityLabel:  "SKU",
				MeasureLabel: "Sales",
				Shape:        "interleaved",
				Files: map[string]string{
					"2023": "AFC SALES BY ITEM SUMMARY 2023.CSV",
					"2024": "AFC SALES BY ITEM SUMMARY 2024.CSV",
					"2025": "AFC SALES BY ITEM SUMMARY 2025.CSV",
				},
				ExcludePrefixes: []string{"LABOR", "LABOR-PF", "LABOR-FF"},
			},
			"purchases-by-vendor": {
				Name:         "purchases-by-vendor",
				Title:        "Purchases by Vendor",
				EntityLabel:  "Vendor",
				MeasureLabel: "Purchases",
				Shape:        "wide",
				Files: map[string]string{
					"2023": "AFC PURCHASES BY VENDOR SUMMARY 2023.CSV",
					"2024": "AFC PURCHASES BY VENDOR SUMMARY 2024.CSV",
					"2025": "AFC PURCHASES BY VENDOR SUMMARY 2025.CSV",
				},
			},
		},
	}
}
