package dashboardhttp

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdash/insightdash/internal/dashboard"
	"github.com/insightdash/insightdash/internal/dashboard/mockdata"
	"github.com/insightdash/insightdash/internal/dashboard/svg"
	"github.com/insightdash/insightdash/internal/view"
)

var fixedNow = time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC)

type lineAdapter func(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error)

type barAdapter func(width, height int, seriesA, seriesB []float64, labels []string, opts svg.BarOpts) (template.HTML, error)

type pieAdapter func(width, height int, values []float64, labels, colors []string, opts svg.PieOpts) (template.HTML, error)

func (a lineAdapter) Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error) {
	return a(width, height, series, labels, opts)
}

func (a barAdapter) Bars(width, height int, seriesA, seriesB []float64, labels []string, opts svg.BarOpts) (template.HTML, error) {
	return a(width, height, seriesA, seriesB, labels, opts)
}

func (a pieAdapter) Pie(width, height int, values []float64, labels, colors []string, opts svg.PieOpts) (template.HTML, error) {
	return a(width, height, values, labels, colors, opts)
}

type testServer struct {
	handler *Handler
	ctrl    *dashboard.Controller
	router  http.Handler
}

func newTestServer(t *testing.T, delay time.Duration, opts ...func(*Handler)) *testServer {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err, "parse templates")

	gen := mockdata.NewGenerator(
		mockdata.WithSource(mockdata.NewSeededSource(7)),
		mockdata.WithClock(func() time.Time { return fixedNow }),
	)
	ctrl := dashboard.NewController(mockdata.NewProvider(gen), dashboard.ControllerConfig{
		MountDelay:  delay,
		RangeDelay:  delay,
		DefaultDays: 30,
	})
	t.Cleanup(ctrl.Close)
	require.NoError(t, ctrl.Mount(context.Background()))

	handler := NewHandler(nil, ctrl, gen, templates, lineAdapter(svg.Line), barAdapter(svg.Bars), pieAdapter(svg.Pie))
	handler.WithNow(func() time.Time { return fixedNow })
	for _, opt := range opts {
		opt(handler)
	}
	router := chi.NewRouter()
	handler.MountRoutes(router)
	return &testServer{handler: handler, ctrl: ctrl, router: router}
}

func (s *testServer) waitIdle(t *testing.T) dashboard.Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snap, err := s.ctrl.WaitIdle(ctx)
	require.NoError(t, err)
	return snap
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

type snapshotBody struct {
	Phase      string `json:"phase"`
	Generation uint64 `json:"generation"`
	RangeLabel string `json:"range_label"`
	Datasets   struct {
		Sales   []dashboard.TimeSeriesPoint `json:"sales"`
		Metrics []dashboard.MetricSummary   `json:"metrics"`
	} `json:"datasets"`
}

func TestDashboardRendersCards(t *testing.T) {
	srv := newTestServer(t, 0)
	srv.waitIdle(t)

	rr := srv.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	for _, want := range []string{
		"InsightDash",
		"$254,890",
		"+10.1%",
		"12,456",
		"-6.0%",
		"Wireless Headphones",
		"Customer Segments",
		"Sales by Channel",
		"<svg",
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, "dashboard loading")
}

func TestDashboardShowsLoadingState(t *testing.T) {
	srv := newTestServer(t, time.Hour)

	rr := srv.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "dashboard loading")
	assert.Contains(t, body, "$254,890", "initial datasets are shown while loading")
}

func TestDashboardSeriesTab(t *testing.T) {
	srv := newTestServer(t, 0)
	srv.waitIdle(t)

	rr := srv.do(httptest.NewRequest(http.MethodGet, "/?series=orders", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `class="tab active">Orders`)
	assert.Contains(t, rr.Body.String(), "var(--chart-3)")
}

func TestRangeFormSelectsRange(t *testing.T) {
	srv := newTestServer(t, time.Hour)
	before := srv.ctrl.Snapshot().Generation

	rr := srv.do(postForm("/range", url.Values{"from": {"2026-10-10"}, "to": {"2026-10-17"}}))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	snap := srv.ctrl.Snapshot()
	assert.True(t, snap.Loading())
	assert.Equal(t, before+1, snap.Generation)
	assert.Equal(t, "Oct 10, 2026 - Oct 17, 2026", snap.Range.Label())
}

func TestRangeFormMissingEndpointIsIgnored(t *testing.T) {
	srv := newTestServer(t, time.Hour)
	before := srv.ctrl.Snapshot()

	rr := srv.do(postForm("/range", url.Values{"from": {"2026-10-10"}}))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, before.Generation, srv.ctrl.Snapshot().Generation)
	assert.Equal(t, before.Range, srv.ctrl.Snapshot().Range)
}

func TestRangeFormRejectsInvalidInput(t *testing.T) {
	srv := newTestServer(t, time.Hour)
	cases := map[string]url.Values{
		"malformed":   {"from": {"2026-13-01"}, "to": {"2026-10-17"}},
		"reversed":    {"from": {"2026-10-17"}, "to": {"2026-10-10"}},
		"not-a-date":  {"from": {"yesterday"}, "to": {"2026-10-17"}},
		"wrong-order": {"from": {"17-10-2026"}, "to": {"2026-10-17"}},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			rr := srv.do(postForm("/range", values))
			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
		})
	}
}

func TestSevenDayRangeEndToEnd(t *testing.T) {
	srv := newTestServer(t, 5*time.Millisecond)

	req := httptest.NewRequest(http.MethodPost, "/api/range", strings.NewReader(`{"from":"2026-10-10","to":"2026-10-17"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := srv.do(req)
	require.Equal(t, http.StatusAccepted, rr.Code)

	var accepted rangeAccepted
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&accepted))
	assert.True(t, accepted.Accepted)

	rr = srv.do(httptest.NewRequest(http.MethodGet, "/api/dashboard?wait=1", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var snap snapshotBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&snap))
	assert.Equal(t, "idle", snap.Phase)
	assert.Equal(t, accepted.Generation, snap.Generation)
	assert.Equal(t, "Oct 10, 2026 - Oct 17, 2026", snap.RangeLabel)
	require.Len(t, snap.Datasets.Sales, 7)
	for _, p := range snap.Datasets.Sales {
		assert.GreaterOrEqual(t, p.Sales, mockdata.SalesMin)
		assert.LessOrEqual(t, p.Sales, mockdata.SalesMax)
		assert.GreaterOrEqual(t, p.Visitors, mockdata.VisitorsMin)
		assert.LessOrEqual(t, p.Visitors, mockdata.VisitorsMax)
		assert.GreaterOrEqual(t, p.Orders, mockdata.OrdersMin)
		assert.LessOrEqual(t, p.Orders, mockdata.OrdersMax)
	}
	assert.Len(t, snap.Datasets.Metrics, 4)
}

func TestAPIRangeIncompleteSelection(t *testing.T) {
	srv := newTestServer(t, time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/api/range", strings.NewReader(`{"to":"2026-10-17"}`))
	rr := srv.do(req)
	require.Equal(t, http.StatusOK, rr.Code)

	var accepted rangeAccepted
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&accepted))
	assert.False(t, accepted.Accepted)
}

func TestAPIRangeRejectsUnknownFields(t *testing.T) {
	srv := newTestServer(t, time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/api/range", strings.NewReader(`{"from":"2026-10-10","to":"2026-10-17","tz":"UTC"}`))
	rr := srv.do(req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLongPollReturnsLoadingSnapshotOnTimeout(t *testing.T) {
	srv := newTestServer(t, time.Hour, func(h *Handler) { h.WithLongPollTimeout(20 * time.Millisecond) })

	rr := srv.do(httptest.NewRequest(http.MethodGet, "/api/dashboard?wait=1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var snap snapshotBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&snap))
	assert.Equal(t, "loading", snap.Phase)
}

func TestAPISales(t *testing.T) {
	srv := newTestServer(t, time.Hour)

	rr := srv.do(httptest.NewRequest(http.MethodGet, "/api/sales?from=2026-10-10&to=2026-10-17", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var points []dashboard.TimeSeriesPoint
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&points))
	require.Len(t, points, 7)
	assert.Equal(t, "Oct 17", points[6].Date)

	rr = srv.do(httptest.NewRequest(http.MethodGet, "/api/sales?from=2026-10-10", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPIHistory(t *testing.T) {
	srv := newTestServer(t, time.Hour)

	rr := srv.do(httptest.NewRequest(http.MethodGet, "/api/metrics/revenue/history", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var points []dashboard.HistoryPoint
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&points))
	assert.Len(t, points, 10)

	rr = srv.do(httptest.NewRequest(http.MethodGet, "/api/metrics/profit/history", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestKPIPage(t *testing.T) {
	srv := newTestServer(t, 0)
	srv.waitIdle(t)

	rr := srv.do(httptest.NewRequest(http.MethodGet, "/kpi/aov", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Avg. Order Value")
	assert.Contains(t, body, "$189")
	assert.Contains(t, body, "$201")
	assert.Contains(t, body, "-6.0%")

	rr = srv.do(httptest.NewRequest(http.MethodGet, "/kpi/profit", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCSVExport(t *testing.T) {
	srv := newTestServer(t, 0)
	srv.waitIdle(t)

	rr := srv.do(httptest.NewRequest(http.MethodGet, "/export.csv", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "insightdash-20261017-093000.csv")

	body := rr.Body.String()
	for _, want := range []string{
		"Metric,Value,Previous,Change %",
		"Total Revenue,254890.00,231560.00",
		"Date,Sales,Visitors,Orders",
		"Segment,Share %",
		"Channel,Revenue",
		"1,Wireless Headphones,1245,12.50",
	} {
		assert.Contains(t, body, want)
	}
}

func TestCSVExportIsRateLimited(t *testing.T) {
	srv := newTestServer(t, 0, func(h *Handler) { h.WithExportRateLimit(1) })
	srv.waitIdle(t)

	first := httptest.NewRequest(http.MethodGet, "/export.csv", nil)
	first.RemoteAddr = "203.0.113.9:4000"
	require.Equal(t, http.StatusOK, srv.do(first).Code)

	second := httptest.NewRequest(http.MethodGet, "/export.csv", nil)
	second.RemoteAddr = "203.0.113.9:4001"
	rr := srv.do(second)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}
