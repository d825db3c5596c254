package productionhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/prodmon/internal/platform/httpx"
	"github.com/odyssey-erp/prodmon/internal/production"
	"github.com/odyssey-erp/prodmon/internal/production/export"
	"github.com/odyssey-erp/prodmon/internal/production/ui"
)

const requestTimeout = 20 * time.Second

// DashboardService defines the data contract used by the handler.
type DashboardService interface {
	Dashboard(ctx context.Context, f production.Filter) (production.Dashboard, error)
	Records(ctx context.Context, f production.Filter) ([]production.Record, error)
	Refresh(ctx context.Context) error
}

// Handler coordinates HTTP requests for the production dashboard.
type Handler struct {
	logger      *slog.Logger
	service     DashboardService
	charts      ui.Renderer
	page        *template.Template
	validate    *validator.Validate
	csvPool     sync.Pool
	now         func() time.Time
	exportLimit int
}

// NewHandler constructs the production HTTP handler. A nil page template
// makes the dashboard answer with JSON only.
func NewHandler(logger *slog.Logger, service DashboardService, charts ui.Renderer, page *template.Template) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:      logger,
		service:     service,
		charts:      charts,
		page:        page,
		validate:    validator.New(),
		now:         time.Now,
		exportLimit: defaultExportLimit,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// WithExportLimit sets the per-minute request budget for export and refresh.
func (h *Handler) WithExportLimit(n int) {
	if n > 0 {
		h.exportLimit = n
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filter, filters, err := h.parseFilters(r.URL.Query())
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dashboard, err := h.service.Dashboard(ctx, filter)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}

	vm := h.buildViewModel(filters, dashboard)
	if h.page == nil || !wantsHTML(r) {
		httpx.JSON(w, http.StatusOK, vm)
		return
	}
	if err := h.attachCharts(&vm, dashboard); err != nil {
		h.handleServerError(w, "render charts", err)
		return
	}
	buf := &bytes.Buffer{}
	if err := h.page.Execute(buf, vm); err != nil {
		h.handleServerError(w, "render template", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream dashboard", err)
	}
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	filter, _, err := h.parseFilters(r.URL.Query())
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	records, err := h.service.Records(ctx, filter)
	if err != nil {
		h.handleServerError(w, "load records", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"filter":  filter,
		"count":   len(records),
		"records": ui.ToRecordRows(records),
	})
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "chart")
	filter, _, err := h.parseFilters(r.URL.Query())
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dashboard, err := h.service.Dashboard(ctx, filter)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}
	chart, err := h.renderChart(name, dashboard)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			httpx.RespondError(w, err)
			return
		}
		h.handleServerError(w, "render chart", err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write([]byte(chart)); err != nil {
		h.logError("stream chart", err)
	}
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	filter, _, err := h.parseFilters(r.URL.Query())
	if err != nil {
		h.handleFilterError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dashboard, err := h.service.Dashboard(ctx, filter)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteTotalsCSV(buf, dashboard.Totals, filter); err != nil {
		h.handleServerError(w, "write totals csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteRecordsCSV(buf, dashboard.Records); err != nil {
		h.handleServerError(w, "write records csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteDateSeriesCSV(buf, dashboard.ByDate); err != nil {
		h.handleServerError(w, "write date csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteCategoryCSV(buf, dashboard.ByProductType); err != nil {
		h.handleServerError(w, "write category csv", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", exportFilename(filter)))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.service.Refresh(ctx); err != nil {
		h.handleServerError(w, "refresh cache", fmt.Errorf("%w: %v", httpx.ErrUnavailable, err))
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/production", http.StatusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "refreshed"})
}

func (h *Handler) buildViewModel(filters ui.DashboardFilters, d production.Dashboard) ui.DashboardViewModel {
	return ui.DashboardViewModel{
		Filters:       filters,
		KPIs:          ui.ToKPICards(d.Totals),
		Records:       ui.ToRecordRows(d.Records),
		ByDate:        d.ByDate,
		ByProductType: d.ByProductType,
		Split:         d.Split,
		Options:       d.Options,
		Empty:         d.Empty(),
		Source:        d.Source,
		GeneratedAt:   d.GeneratedAt,
		Query:         encodeFilters(filters),
	}
}

func (h *Handler) attachCharts(vm *ui.DashboardViewModel, d production.Dashboard) error {
	if h.charts == nil {
		return fmt.Errorf("svg renderer missing")
	}
	var err error
	if vm.ByDateSVG, err = h.renderChart(chartByDate, d); err != nil {
		return err
	}
	if vm.TrendSVG, err = h.renderChart(chartTrend, d); err != nil {
		return err
	}
	if vm.ProductSVG, err = h.renderChart(chartByProduct, d); err != nil {
		return err
	}
	vm.SplitSVG, err = h.renderChart(chartSplit, d)
	return err
}

func (h *Handler) handleFilterError(w http.ResponseWriter, err error) {
	var vErr validationError
	if errors.As(err, &vErr) {
		httpx.RespondError(w, err)
		return
	}
	h.handleServerError(w, "parse filters", err)
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	httpx.RespondError(w, err)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func exportFilename(f production.Filter) string {
	from, to := f.DateFrom, f.DateTo
	if from == "" {
		from = "all"
	}
	if to == "" {
		to = "all"
	}
	return fmt.Sprintf("production-%s_%s.csv", from, to)
}
