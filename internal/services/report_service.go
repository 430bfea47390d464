// Package services orchestrates the report pipeline: it loads and memoizes
// datasets, runs the aggregate/top-N stages for a requested view, and hands
// immutable result structures to the transport and export layers. Pages
// "rerun" by calling View again with new parameters; no state persists
// across invocations except the dataset cache.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"salesdash/internal/config"
	"salesdash/internal/csvio"
	"salesdash/internal/infrastructure"
	"salesdash/internal/reports"
)

// Sentinel errors the transport layer maps onto API responses.
var (
	// ErrUnknownReport means the requested report is not configured.
	ErrUnknownReport = errors.New("unknown report")
	// ErrNoData means classification plus year selection left zero rows.
	// Distinct from a load failure: the files were fine, the filters ate
	// everything.
	ErrNoData = errors.New("no data matches the requested filters")
)

// ViewOptions are the user controls for one report view.
type ViewOptions struct {
	// Year selects one year; empty picks the latest available.
	Year string
	// TopN bounds chart cardinality; 0 picks the configured default.
	TopN int
	// ExcludeCategory drops entities matching the report's configured
	// exclusion prefixes (the "exclude labor" toggle).
	ExcludeCategory bool
}

// ReportView is the immutable result of one pipeline run: every aggregate
// table the chart layer needs for one report page, plus the KPI summary.
type ReportView struct {
	Report         string          `json:"report"`
	Title          string          `json:"title"`
	EntityLabel    string          `json:"entity_label"`
	MeasureLabel   string          `json:"measure_label"`
	Year           string          `json:"year"`
	TopN           int             `json:"top_n"`
	AvailableYears []string        `json:"available_years"`
	Summary        reports.Summary `json:"summary"`

	// TopEntities is the selected-year top-N membership, largest first.
	TopEntities []string `json:"top_entities"`

	// EntityTotals ranks the selected year's top-N entities by total.
	EntityTotals *reports.AggregateTable `json:"entity_totals"`
	// AvgMonthlyByEntity is the selected year's average monthly figure per
	// top-N entity (the average-monthly-spend chart).
	AvgMonthlyByEntity *reports.AggregateTable `json:"avg_monthly_by_entity"`
	// MonthlyByEntity breaks the selected-year top-N down per month.
	MonthlyByEntity *reports.AggregateTable `json:"monthly_by_entity"`
	// YearTotals sums each year for the share-by-year donut.
	YearTotals *reports.AggregateTable `json:"year_totals"`
	// MonthlyYearTotals is the month×year matrix behind the YoY line chart.
	MonthlyYearTotals *reports.AggregateTable `json:"monthly_year_totals"`
	// YearEntityComparison compares the all-years top-N entities across
	// years. The membership comes from all-years totals on purpose, so the
	// same entities appear in every year group.
	YearEntityComparison *reports.AggregateTable `json:"year_entity_comparison"`
}

// ReportInfo describes one configured report for the listing endpoint.
type ReportInfo struct {
	Name         string   `json:"name"`
	Title        string   `json:"title"`
	EntityLabel  string   `json:"entity_label"`
	MeasureLabel string   `json:"measure_label"`
	Years        []string `json:"years"`
}

type cachedDataset struct {
	key  string
	data reports.Dataset
}

// ReportService runs the report pipeline. Safe for concurrent use: the
// dataset cache is guarded, and singleflight guarantees at most one parse
// per cache key with matching results served to late-arriving duplicates.
type ReportService struct {
	cfg     config.ReportsConfig
	set     *config.ReportSet
	logger  *slog.Logger
	metrics *infrastructure.Metrics

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]*cachedDataset
}

// NewReportService creates a report service. A nil metrics holder disables
// metric recording; a nil logger falls back to slog's default.
func NewReportService(cfg config.ReportsConfig, set *config.ReportSet, logger *slog.Logger, metrics *infrastructure.Metrics) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		cfg:     cfg,
		set:     set,
		logger:  logger.With(slog.String("component", "report_service")),
		metrics: metrics,
		cache:   make(map[string]*cachedDataset),
	}
}

// ListReports returns the configured reports in name order with the years
// whose files are currently present.
func (s *ReportService) ListReports(ctx context.Context) []ReportInfo {
	names := make([]string, 0, len(s.set.Reports))
	for name := range s.set.Reports {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ReportInfo, 0, len(names))
	for _, name := range names {
		def := s.set.Reports[name]
		out = append(out, ReportInfo{
			Name:         name,
			Title:        def.Title,
			EntityLabel:  def.EntityLabel,
			MeasureLabel: def.MeasureLabel,
			Years:        s.availableYears(def),
		})
	}
	return out
}

// View runs the whole pipeline for one report and option set:
// load → classify → reshape → merge → filter → aggregate → top-N → KPIs.
func (s *ReportService) View(ctx context.Context, report string, opts ViewOptions) (*ReportView, error) {
	def, ok := s.set.Reports[report]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReport, report)
	}

	start := time.Now()
	if opts.TopN == 0 {
		opts.TopN = s.cfg.DefaultTopN
	}
	if opts.TopN < 1 || opts.TopN > s.cfg.MaxTopN {
		return nil, fmt.Errorf("top_n must be between 1 and %d, got %d", s.cfg.MaxTopN, opts.TopN)
	}

	full, err := s.loadDataset(ctx, def)
	if err != nil {
		if s.metrics != nil {
			s.metrics.LoadFailures.WithLabelValues(report).Inc()
		}
		return nil, err
	}

	data := full
	if opts.ExcludeCategory {
		data = data.ExcludePrefixes(def.ExcludePrefixes)
	}

	years := data.Years()
	if opts.Year == "" && len(years) > 0 {
		opts.Year = years[len(years)-1]
	}

	yearDS := data.FilterYear(opts.Year)
	if len(yearDS) == 0 {
		return nil, fmt.Errorf("%w: report %s year %s", ErrNoData, report, opts.Year)
	}

	view, err := s.buildView(def, data, yearDS, opts)
	if err != nil {
		return nil, err
	}
	view.AvailableYears = years

	if s.metrics != nil {
		s.metrics.ReportViews.WithLabelValues(report).Inc()
		s.metrics.ViewDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())
	}
	s.logger.InfoContext(ctx, "report view built",
		slog.String("report", report),
		slog.String("year", opts.Year),
		slog.Int("top_n", opts.TopN),
		slog.Int("records", len(data)),
		slog.Duration("elapsed", time.Since(start)))

	return view, nil
}

// buildView derives every aggregate table one page needs from the filtered
// dataset. All derivations are pure; errors here mean a programming mistake
// (bad dimension), not bad data.
func (s *ReportService) buildView(def config.ReportDef, data, yearDS reports.Dataset, opts ViewOptions) (*ReportView, error) {
	entityTotals, err := reports.Aggregate(yearDS, reports.DimEntity)
	if err != nil {
		return nil, err
	}
	topEntities, err := reports.TopN(entityTotals, opts.TopN)
	if err != nil {
		return nil, err
	}

	monthlyByEntity, err := reports.Aggregate(yearDS.FilterEntities(topEntities), reports.DimMonth, reports.DimEntity)
	if err != nil {
		return nil, err
	}
	yearTotals, err := reports.Aggregate(data, reports.DimYear)
	if err != nil {
		return nil, err
	}
	monthlyYearTotals, err := reports.Aggregate(data, reports.DimYear, reports.DimMonth)
	if err != nil {
		return nil, err
	}

	overallTotals, err := reports.Aggregate(data, reports.DimEntity)
	if err != nil {
		return nil, err
	}
	overallTop, err := reports.TopN(overallTotals, opts.TopN)
	if err != nil {
		return nil, err
	}
	comparison, err := reports.Aggregate(data, reports.DimYear, reports.DimEntity)
	if err != nil {
		return nil, err
	}

	summary, err := reports.BuildSummary(yearDS, data, opts.TopN)
	if err != nil {
		return nil, err
	}

	return &ReportView{
		Report:               def.Name,
		Title:                def.Title,
		EntityLabel:          def.EntityLabel,
		MeasureLabel:         def.MeasureLabel,
		Year:                 opts.Year,
		TopN:                 opts.TopN,
		Summary:              summary,
		TopEntities:          topEntities,
		EntityTotals:         entityTotals.FilterEntities(topEntities),
		AvgMonthlyByEntity:   reports.AverageByEntity(yearDS).FilterEntities(topEntities),
		MonthlyByEntity:      monthlyByEntity,
		YearTotals:           yearTotals,
		MonthlyYearTotals:    monthlyYearTotals,
		YearEntityComparison: comparison.FilterEntities(overallTop),
	}, nil
}

// loadDataset returns the merged multi-year dataset for a report, parsing
// the source files at most once per (paths, modtimes) cache key. Concurrent
// callers for the same key share a single parse via singleflight.
func (s *ReportService) loadDataset(ctx context.Context, def config.ReportDef) (reports.Dataset, error) {
	key, err := s.cacheKey(def)
	if err != nil {
		return nil, err
	}

	if ds, ok := s.cached(def.Name, key); ok {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		return ds, nil
	}

	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: a caller that lost the race to a
		// completed flight must not parse again.
		if ds, ok := s.cached(def.Name, key); ok {
			return ds, nil
		}
		if s.metrics != nil {
			s.metrics.CacheMisses.Inc()
		}
		ds, err := s.parseAll(ctx, def)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[def.Name] = &cachedDataset{key: key, data: ds}
		s.mu.Unlock()
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.DebugContext(ctx, "dataset load shared with concurrent request",
			slog.String("report", def.Name))
	}
	return v.(reports.Dataset), nil
}

func (s *ReportService) cached(name, key string) (reports.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry := s.cache[name]; entry != nil && entry.key == key {
		return entry.data, true
	}
	return nil, false
}

// cacheKey identifies the exact on-disk inputs of a report: name, resolved
// paths, and modtimes. Missing files are part of the key (a file appearing
// later must invalidate).
func (s *ReportService) cacheKey(def config.ReportDef) (string, error) {
	var b strings.Builder
	b.WriteString(def.Name)
	for _, year := range s.orderedYears(def) {
		path := config.FilePath(s.cfg, def.Files[year])
		b.WriteString("|")
		b.WriteString(path)
		b.WriteString("@")
		if info, err := os.Stat(path); err == nil {
			fmt.Fprintf(&b, "%d:%d", info.ModTime().UnixNano(), info.Size())
		} else {
			b.WriteString("missing")
		}
	}
	return b.String(), nil
}

// parseAll reads, classifies, and reshapes every available year, then merges
// them in canonical year order. Years whose file is absent are skipped; a
// report with zero readable years is a load failure.
func (s *ReportService) parseAll(ctx context.Context, def config.ReportDef) (reports.Dataset, error) {
	shape, err := reports.ParseShape(def.Shape)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", def.Name, err)
	}
	classifier := reports.NewClassifier(def.GroupingBuckets, def.HeaderEchoes)
	reshaper := reports.NewReshaper(classifier, def.Aliases)

	var sets []reports.YearSet
	for _, year := range s.orderedYears(def) {
		path := config.FilePath(s.cfg, def.Files[year])
		if _, statErr := os.Stat(path); statErr != nil {
			s.logger.WarnContext(ctx, "report file missing, skipping year",
				slog.String("report", def.Name),
				slog.String("year", year),
				slog.String("path", path))
			continue
		}

		rows, encoding, err := csvio.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("report %s year %s: %w", def.Name, year, err)
		}
		ds, err := reshaper.Reshape(reports.RawTable{Rows: rows, Shape: shape}, year)
		if err != nil {
			return nil, fmt.Errorf("report %s year %s: %w", def.Name, year, err)
		}

		s.logger.InfoContext(ctx, "report file parsed",
			slog.String("report", def.Name),
			slog.String("year", year),
			slog.String("encoding", encoding),
			slog.Int("records", len(ds)))
		sets = append(sets, reports.YearSet{Year: year, Records: ds})
	}

	if len(sets) == 0 {
		return nil, fmt.Errorf("report %s: no readable files", def.Name)
	}
	return reports.Merge(s.set.YearOrder, sets), nil
}

// orderedYears lists a report's configured years in canonical order, any
// unlisted years after them alphabetically.
func (s *ReportService) orderedYears(def config.ReportDef) []string {
	listed := make(map[string]bool, len(s.set.YearOrder))
	var out []string
	for _, y := range s.set.YearOrder {
		if _, ok := def.Files[y]; ok {
			listed[y] = true
			out = append(out, y)
		}
	}
	var rest []string
	for y := range def.Files {
		if !listed[y] {
			rest = append(rest, y)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// availableYears reports which configured years have a file on disk.
func (s *ReportService) availableYears(def config.ReportDef) []string {
	var out []string
	for _, year := range s.orderedYears(def) {
		if _, err := os.Stat(config.FilePath(s.cfg, def.Files[year])); err == nil {
			out = append(out, year)
		}
	}
	return out
}
