package dashboardhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/insightdash/insightdash/internal/dashboard"
	"github.com/insightdash/insightdash/internal/dashboard/export"
	"github.com/insightdash/insightdash/internal/dashboard/svg"
	"github.com/insightdash/insightdash/internal/dashboard/ui"
	"github.com/insightdash/insightdash/internal/platform/httpx"
	"github.com/insightdash/insightdash/internal/view"
)

const (
	defaultLongPollTimeout = 5 * time.Second
	sparklineWidth         = 160
	sparklineHeight        = 40
	panelWidth             = 420
	panelHeight            = 260
	performanceHeight      = 300
)

// DashboardState is the refresh controller contract used by the handler.
type DashboardState interface {
	Snapshot() dashboard.Snapshot
	SelectRange(from, to *time.Time) (uint64, bool)
	WaitIdle(ctx context.Context) (dashboard.Snapshot, error)
}

// SalesFilter produces a stateless sales series for an arbitrary range.
type SalesFilter interface {
	FilterByDateRange(data []dashboard.TimeSeriesPoint, from, to time.Time) []dashboard.TimeSeriesPoint
}

// Handler coordinates HTTP requests for the sales dashboard.
type Handler struct {
	logger          *slog.Logger
	state           DashboardState
	sales           SalesFilter
	templates       *view.Engine
	line            ui.LineRenderer
	bar             ui.BarRenderer
	pie             ui.PieRenderer
	validator       *validator.Validate
	csvPool         sync.Pool
	now             func() time.Time
	longPollTimeout time.Duration
	exportPerMinute int
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, state DashboardState, sales SalesFilter, templates *view.Engine, line ui.LineRenderer, bar ui.BarRenderer, pie ui.PieRenderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:          logger,
		state:           state,
		sales:           sales,
		templates:       templates,
		line:            line,
		bar:             bar,
		pie:             pie,
		validator:       newValidator(),
		now:             time.Now,
		longPollTimeout: defaultLongPollTimeout,
		exportPerMinute: defaultExportPerMinute,
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

// WithLongPollTimeout bounds how long /api/dashboard?wait=1 blocks.
func (h *Handler) WithLongPollTimeout(d time.Duration) {
	if d > 0 {
		h.longPollTimeout = d
	}
}

// WithExportRateLimit sets the per-IP CSV export budget per minute.
func (h *Handler) WithExportRateLimit(perMinute int) {
	if perMinute > 0 {
		h.exportPerMinute = perMinute
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	series := ui.ParseSeriesKey(r.URL.Query().Get("series"))
	snap := h.state.Snapshot()

	vm, err := h.buildViewModel(snap, series)
	if err != nil {
		h.handleServerError(w, "render charts", err)
		return
	}
	data := view.TemplateData{
		Title:       "Dashboard",
		CurrentPath: r.URL.Path,
		Data:        vm,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", data); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

func (h *Handler) handleRangeForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.RespondError(w, fmt.Errorf("form: %w", httpx.ErrValidation))
		return
	}
	req := rangeRequest{From: r.PostFormValue("from"), To: r.PostFormValue("to")}
	from, to, err := h.parseRange(req, false)
	if err != nil {
		h.handleInputError(w, err)
		return
	}
	if gen, ok := h.state.SelectRange(from, to); ok {
		h.logger.Info("range selected", slog.Uint64("generation", gen), slog.String("from", req.From), slog.String("to", req.To))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleKPI(w http.ResponseWriter, r *http.Request) {
	id, ok := dashboard.ParseMetricID(chi.URLParam(r, "id"))
	if !ok {
		httpx.RespondError(w, fmt.Errorf("metric %q: %w", chi.URLParam(r, "id"), httpx.ErrNotFound))
		return
	}
	snap := h.state.Snapshot()
	metric, ok := snap.Datasets.Metric(id)
	if !ok {
		httpx.RespondError(w, fmt.Errorf("metric %q not loaded: %w", id, httpx.ErrNotFound))
		return
	}

	vm, err := h.buildMetricDetail(metric, snap.Datasets.History[id])
	if err != nil {
		h.handleServerError(w, "render metric detail", err)
		return
	}
	data := view.TemplateData{
		Title:       metric.Name,
		CurrentPath: r.URL.Path,
		Data:        vm,
	}
	if err := h.templates.Render(w, "pages/kpi.html", data); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

type dashboardResponse struct {
	dashboard.Snapshot
	RangeLabel string `json:"range_label"`
}

func (h *Handler) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	snap := h.state.Snapshot()
	if wait := r.URL.Query().Get("wait"); wait == "1" || wait == "true" {
		ctx, cancel := context.WithTimeout(r.Context(), h.longPollTimeout)
		defer cancel()
		var err error
		snap, err = h.state.WaitIdle(ctx)
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			// client went away
			return
		}
	}
	httpx.JSON(w, http.StatusOK, dashboardResponse{Snapshot: snap, RangeLabel: snap.Range.Label()})
}

type rangeAccepted struct {
	Accepted   bool   `json:"accepted"`
	Generation uint64 `json:"generation"`
}

func (h *Handler) handleAPIRange(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("decode body: %v: %w", err, httpx.ErrValidation))
		return
	}
	from, to, err := h.parseRange(req, false)
	if err != nil {
		h.handleInputError(w, err)
		return
	}
	gen, ok := h.state.SelectRange(from, to)
	if !ok {
		httpx.JSON(w, http.StatusOK, rangeAccepted{Accepted: false, Generation: h.state.Snapshot().Generation})
		return
	}
	h.logger.Info("range selected", slog.Uint64("generation", gen), slog.String("from", req.From), slog.String("to", req.To))
	httpx.JSON(w, http.StatusAccepted, rangeAccepted{Accepted: true, Generation: gen})
}

func (h *Handler) handleAPISales(w http.ResponseWriter, r *http.Request) {
	req := rangeRequest{From: r.URL.Query().Get("from"), To: r.URL.Query().Get("to")}
	from, to, err := h.parseRange(req, true)
	if err != nil {
		h.handleInputError(w, err)
		return
	}
	points := h.sales.FilterByDateRange(nil, *from, *to)
	httpx.JSON(w, http.StatusOK, points)
}

func (h *Handler) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := dashboard.ParseMetricID(chi.URLParam(r, "id"))
	if !ok {
		httpx.RespondError(w, fmt.Errorf("metric %q: %w", chi.URLParam(r, "id"), httpx.ErrNotFound))
		return
	}
	history, ok := h.state.Snapshot().Datasets.History[id]
	if !ok {
		httpx.RespondError(w, fmt.Errorf("metric %q not loaded: %w", id, httpx.ErrNotFound))
		return
	}
	httpx.JSON(w, http.StatusOK, history)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	snap := h.state.Snapshot()
	data := snap.Datasets

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteMetricsCSV(buf, data.Metrics, snap.Range); err != nil {
		h.handleServerError(w, "write metrics csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteSalesCSV(buf, data.Sales); err != nil {
		h.handleServerError(w, "write sales csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteSegmentsCSV(buf, data.Segments); err != nil {
		h.handleServerError(w, "write segments csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteChannelsCSV(buf, data.Channels); err != nil {
		h.handleServerError(w, "write channels csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteTopProductsCSV(buf, data.TopProducts); err != nil {
		h.handleServerError(w, "write products csv", err)
		return
	}

	filename := fmt.Sprintf("insightdash-%s.csv", h.now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) buildViewModel(snap dashboard.Snapshot, series ui.SeriesKey) (ui.DashboardViewModel, error) {
	if h.line == nil || h.bar == nil || h.pie == nil {
		return ui.DashboardViewModel{}, fmt.Errorf("svg renderer missing")
	}
	data := snap.Datasets
	vm := ui.DashboardViewModel{
		RangeLabel: snap.Range.Label(),
		From:       snap.Range.From.Format(ui.InputDateLayout),
		To:         snap.Range.To.Format(ui.InputDateLayout),
		Loading:    snap.Loading(),
		Generation: snap.Generation,
		UpdatedAt:  snap.UpdatedAt,
		Series:     series,
		Tabs:       ui.ToSeriesTabs(series),
		Products:   ui.ToProductRows(data.TopProducts),
		Segments:   ui.ToSegmentRows(data.Segments),
	}

	vm.Metrics = make([]ui.MetricCard, 0, len(data.Metrics))
	for _, metric := range data.Metrics {
		card := ui.ToMetricCard(metric)
		values, labels := ui.HistorySeries(data.History[metric.ID])
		if len(values) > 0 {
			spark, err := h.line.Line(sparklineWidth, sparklineHeight, values, labels, svg.LineOpts{
				Title:       metric.Name + " trend",
				Description: "Recent " + strings.ToLower(metric.Name),
				Compact:     true,
			})
			if err != nil {
				return ui.DashboardViewModel{}, err
			}
			card.Sparkline = spark
		}
		vm.Metrics = append(vm.Metrics, card)
	}

	if len(data.Sales) > 0 {
		salesSVG, err := h.line.Line(svg.DefaultWidth, performanceHeight, series.Values(data.Sales), ui.SalesLabels(data.Sales), svg.LineOpts{
			Title:       "Performance",
			Description: series.Label() + " per day",
			StrokeColor: series.Color(),
			TickFormat:  ui.TickFormatFor(series == ui.SeriesSales),
		})
		if err != nil {
			return ui.DashboardViewModel{}, err
		}
		vm.SalesSVG = salesSVG
	}

	if len(data.Segments) > 0 {
		values := make([]float64, 0, len(data.Segments))
		labels := make([]string, 0, len(data.Segments))
		colors := make([]string, 0, len(data.Segments))
		for _, s := range data.Segments {
			values = append(values, float64(s.Value))
			labels = append(labels, s.Segment)
			colors = append(colors, s.Color)
		}
		pieSVG, err := h.pie.Pie(panelWidth, panelHeight, values, labels, colors, svg.PieOpts{
			Title:       "Customer segments",
			Description: "Share of customers by segment",
		})
		if err != nil {
			return ui.DashboardViewModel{}, err
		}
		vm.SegmentsSVG = pieSVG
	}

	if len(data.Channels) > 0 {
		values := make([]float64, 0, len(data.Channels))
		labels := make([]string, 0, len(data.Channels))
		for _, c := range data.Channels {
			values = append(values, c.Value)
			labels = append(labels, c.Name)
		}
		barSVG, err := h.bar.Bars(panelWidth, panelHeight, values, nil, labels, svg.BarOpts{
			Title:        "Sales by channel",
			Description:  "Revenue per marketing channel",
			SeriesALabel: "Revenue",
			TickFormat:   ui.TickFormatFor(true),
		})
		if err != nil {
			return ui.DashboardViewModel{}, err
		}
		vm.ChannelsSVG = barSVG
	}

	return vm, nil
}

func (h *Handler) buildMetricDetail(metric dashboard.MetricSummary, history []dashboard.HistoryPoint) (ui.MetricDetailViewModel, error) {
	if h.line == nil {
		return ui.MetricDetailViewModel{}, fmt.Errorf("svg renderer missing")
	}
	card := ui.ToMetricCard(metric)
	vm := ui.MetricDetailViewModel{
		Card:     card,
		Current:  card.Value,
		Previous: metric.ID.FormatValue(metric.PreviousValue),
		Change:   card.Change,
		Positive: card.Positive,
		History:  history,
	}
	values, labels := ui.HistorySeries(history)
	if len(values) == 0 {
		return vm, nil
	}
	trend, err := h.line.Line(svg.DefaultWidth, svg.DefaultHeight, values, labels, svg.LineOpts{
		Title:       metric.Name,
		Description: metric.Name + fmt.Sprintf(" over the last %d days", len(values)),
		ShowDots:    true,
		TickFormat:  ui.TickFormatFor(metric.ID.IsMonetary()),
	})
	if err != nil {
		return ui.MetricDetailViewModel{}, err
	}
	vm.TrendSVG = trend
	return vm, nil
}

type rangeRequest struct {
	From string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

// parseRange validates both endpoints. A missing endpoint yields nil, mirroring a
// picker with only one side selected, unless required is set.
func (h *Handler) parseRange(req rangeRequest, required bool) (*time.Time, *time.Time, error) {
	req.From = strings.TrimSpace(req.From)
	req.To = strings.TrimSpace(req.To)
	if err := h.validator.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, nil, validationError{field: fieldErrs[0].Field(), reason: "must be a YYYY-MM-DD date"}
		}
		return nil, nil, err
	}
	if required {
		if req.From == "" {
			return nil, nil, validationError{field: "from", reason: "is required"}
		}
		if req.To == "" {
			return nil, nil, validationError{field: "to", reason: "is required"}
		}
	}
	from := parseDate(req.From)
	to := parseDate(req.To)
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, validationError{field: "to", reason: "must not precede from"}
	}
	return from, to, nil
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.ParseInLocation(ui.InputDateLayout, raw, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

func (h *Handler) handleInputError(w http.ResponseWriter, err error) {
	var vErr validationError
	if errors.As(err, &vErr) {
		httpx.RespondError(w, fmt.Errorf("%s: %w", vErr.Error(), httpx.ErrValidation))
		return
	}
	h.handleServerError(w, "parse range", err)
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

type validationError struct {
	field  string
	reason string
}

func (v validationError) Error() string {
	if v.reason == "" {
		return fmt.Sprintf("invalid %s", v.field)
	}
	return fmt.Sprintf("%s %s", v.field, v.reason)
}
