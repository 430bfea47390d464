// Package http exposes the report pipeline over REST: listing, report
// views with year/top-N/exclusion controls, and CSV/Excel downloads.
package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salesdash/internal/config"
	apierrors "salesdash/internal/errors"
	"salesdash/internal/exporter"
	"salesdash/internal/services"
)

// ReportHandler handles report-related HTTP requests.
type ReportHandler struct {
	service *services.ReportService
	csv     *exporter.CSVWriter
	cfg     config.ReportsConfig
	logger  *slog.Logger
}

// NewReportHandler creates a report handler.
func NewReportHandler(service *services.ReportService, cfg config.ReportsConfig, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		service: service,
		csv:     exporter.NewCSVWriter(),
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "report_handler")),
	}
}

// Routes returns the report routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/reports", h.ListReports)
	r.Route("/reports/{report}", func(r chi.Router) {
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.GetReport)
		r.Get("/export", h.ExportReport)
	})

	return r
}

// ListReports handles GET /api/reports.
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports := h.service.ListReports(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"reports": reports,
		"count":   len(reports),
	})
}

// GetReport handles GET /api/reports/{report} with optional year, top_n, and
// exclude query parameters.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report := chi.URLParam(r, "report")
	opts, apiErr := h.parseOptions(r)
	if apiErr != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apiErr))
		return
	}

	view, err := h.service.View(r.Context(), report, opts)
	if err != nil {
		h.renderServiceError(w, r, report, err)
		return
	}
	render.JSON(w, r, view)
}

// ExportReport handles GET /api/reports/{report}/export?format=csv|xlsx.
func (h *ReportHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	report := chi.URLParam(r, "report")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.ErrValidation("format", fmt.Sprintf("unsupported export format %q", format))))
		return
	}

	opts, apiErr := h.parseOptions(r)
	if apiErr != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apiErr))
		return
	}

	view, err := h.service.View(r.Context(), report, opts)
	if err != nil {
		h.renderServiceError(w, r, report, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.%s", report, view.Year, format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		if err := h.csv.WriteView(w, view); err != nil {
			h.logger.ErrorContext(r.Context(), "csv export failed",
				slog.String("report", report), slog.String("error", err.Error()))
		}
	case "xlsx":
		f, err := exporter.Workbook(view)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "workbook build failed",
				slog.String("report", report), slog.String("error", err.Error()))
			w.Header().Del("Content-Disposition")
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := f.Write(w); err != nil {
			h.logger.ErrorContext(r.Context(), "xlsx export failed",
				slog.String("report", report), slog.String("error", err.Error()))
		}
	}
}

// parseOptions extracts and validates the view controls from the query
// string. Bounds are enforced here so callers get a 400, not a 500.
func (h *ReportHandler) parseOptions(r *http.Request) (services.ViewOptions, *apierrors.APIError) {
	q := r.URL.Query()
	opts := services.ViewOptions{Year: q.Get("year")}

	if raw := q.Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return opts, apierrors.ErrValidation("top_n", "must be an integer")
		}
		if n < 1 || n > h.cfg.MaxTopN {
			return opts, apierrors.ErrValidation("top_n",
				fmt.Sprintf("must be between 1 and %d", h.cfg.MaxTopN))
		}
		opts.TopN = n
	}

	if raw := q.Get("exclude"); raw != "" {
		exclude, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, apierrors.ErrValidation("exclude", "must be a boolean")
		}
		opts.ExcludeCategory = exclude
	}

	return opts, nil
}

func (h *ReportHandler) renderServiceError(w http.ResponseWriter, r *http.Request, report string, err error) {
	var apiErr *apierrors.APIError
	switch {
	case errors.Is(err, services.ErrUnknownReport):
		apiErr = apierrors.NotFoundError(fmt.Sprintf("report %s", report))
	case errors.Is(err, services.ErrNoData):
		apiErr = apierrors.NoDataError(report)
	default:
		h.logger.ErrorContext(r.Context(), "report view failed",
			slog.String("report", report), slog.String("error", err.Error()))
		apiErr = apierrors.LoadFailedError(report, err)
	}
	render.Render(w, r, apierrors.NewErrorResponse(apiErr))
}
