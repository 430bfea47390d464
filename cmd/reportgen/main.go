// Command reportgen runs the report pipeline offline and writes the export
// files without serving HTTP. Useful for cron jobs and for eyeballing the
// numbers a deploy will serve.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"salesdash/internal/config"
	"salesdash/internal/exporter"
	"salesdash/internal/infrastructure"
	"salesdash/internal/services"
)

func main() {
	var (
		report  = flag.String("report", "", "report name (empty runs every configured report)")
		year    = flag.String("year", "", "year to export (empty picks the latest)")
		topN    = flag.Int("top", 0, "top-N size (0 uses the configured default)")
		exclude = flag.Bool("exclude", false, "apply the report's exclusion prefixes")
		format  = flag.String("format", "xlsx", "output format: csv or xlsx")
		outDir  = flag.String("out", ".", "output directory")
	)
	flag.Parse()

	if err := run(*report, *year, *topN, *exclude, *format, *outDir); err != nil {
		fmt.Fprintf(os.Stderr, "reportgen: %v\n", err)
		os.Exit(1)
	}
}

func run(report, year string, topN int, exclude bool, format, outDir string) error {
	if format != "csv" && format != "xlsx" {
		return fmt.Errorf("unsupported format %q", format)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	set, err := config.LoadReportSet(cfg.Reports)
	if err != nil {
		return fmt.Errorf("load report definitions: %w", err)
	}

	svc := services.NewReportService(cfg.Reports, set, logger, nil)

	var names []string
	if report != "" {
		names = []string{report}
	} else {
		for _, info := range svc.ListReports(context.Background()) {
			names = append(names, info.Name)
		}
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	opts := services.ViewOptions{Year: year, TopN: topN, ExcludeCategory: exclude}
	for _, name := range names {
		view, err := svc.View(context.Background(), name, opts)
		if err != nil {
			return fmt.Errorf("report %s: %w", name, err)
		}

		path := filepath.Join(outDir, fmt.Sprintf("%s-%s.%s", name, view.Year, format))
		if err := writeExport(path, format, view); err != nil {
			return fmt.Errorf("report %s: %w", name, err)
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}

func writeExport(path, format string, view *services.ReportView) error {
	if format == "csv" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return exporter.NewCSVWriter().WriteView(f, view)
	}

	wb, err := exporter.Workbook(view)
	if err != nil {
		return err
	}
	defer wb.Close()
	return wb.SaveAs(path)
}
