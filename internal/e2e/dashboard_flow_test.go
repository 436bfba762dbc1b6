package e2e

import (
	"context"
	"encoding/json"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdash/insightdash/internal/app"
	"github.com/insightdash/insightdash/internal/dashboard"
	dashboardhttp "github.com/insightdash/insightdash/internal/dashboard/http"
	"github.com/insightdash/insightdash/internal/dashboard/mockdata"
	"github.com/insightdash/insightdash/internal/dashboard/svg"
	"github.com/insightdash/insightdash/internal/observability"
	"github.com/insightdash/insightdash/internal/view"
)

var today = time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC)

type renderers struct{}

func (renderers) Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error) {
	return svg.Line(width, height, series, labels, opts)
}

func (renderers) Bars(width, height int, seriesA, seriesB []float64, labels []string, opts svg.BarOpts) (template.HTML, error) {
	return svg.Bars(width, height, seriesA, seriesB, labels, opts)
}

func (renderers) Pie(width, height int, values []float64, labels, colors []string, opts svg.PieOpts) (template.HTML, error) {
	return svg.Pie(width, height, values, labels, colors, opts)
}

type stack struct {
	server *httptest.Server
	ctrl   *dashboard.Controller
}

func newStack(t *testing.T, delay time.Duration) *stack {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &app.Config{
		AppEnv:                   "development",
		AppRequestTimeout:        10 * time.Second,
		RateLimitPerMinute:       1000,
		ExportRateLimitPerMinute: 5,
	}
	metrics := observability.NewMetrics()

	gen := mockdata.NewGenerator(
		mockdata.WithSource(mockdata.NewSeededSource(42)),
		mockdata.WithClock(func() time.Time { return today }),
	)
	ctrl := dashboard.NewController(mockdata.NewProvider(gen), dashboard.ControllerConfig{
		MountDelay:  delay,
		RangeDelay:  delay,
		DefaultDays: 30,
	}, dashboard.WithLogger(logger), dashboard.WithObserver(metrics))
	t.Cleanup(ctrl.Close)
	require.NoError(t, ctrl.Mount(context.Background()))

	templates, err := view.NewEngine()
	require.NoError(t, err)
	handler := dashboardhttp.NewHandler(logger, ctrl, gen, templates, renderers{}, renderers{}, renderers{})
	handler.WithNow(func() time.Time { return today })
	handler.WithLongPollTimeout(2 * time.Second)

	server := httptest.NewServer(app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		DashboardHandler: handler,
		Metrics:          metrics,
	}))
	t.Cleanup(server.Close)
	return &stack{server: server, ctrl: ctrl}
}

func (s *stack) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := s.server.Client().Get(s.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

type dashboardState struct {
	Phase      string `json:"phase"`
	Generation uint64 `json:"generation"`
	RangeLabel string `json:"range_label"`
	Datasets   struct {
		Sales []dashboard.TimeSeriesPoint `json:"sales"`
	} `json:"datasets"`
}

func (s *stack) waitIdle(t *testing.T) dashboardState {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		code, body := s.get(t, "/api/dashboard?wait=1")
		require.Equal(t, http.StatusOK, code)
		var state dashboardState
		require.NoError(t, json.Unmarshal([]byte(body), &state))
		if state.Phase == "idle" {
			return state
		}
		require.True(t, time.Now().Before(deadline), "dashboard never settled")
	}
}

func TestDashboardRangeSelectionFlow(t *testing.T) {
	s := newStack(t, 200*time.Millisecond)

	code, body := s.get(t, "/")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "dashboard loading")

	initial := s.waitIdle(t)
	assert.Len(t, initial.Datasets.Sales, 30)
	assert.Equal(t, "Sep 17, 2026 - Oct 17, 2026", initial.RangeLabel)

	resp, err := s.server.Client().Post(s.server.URL+"/api/range", "application/json",
		strings.NewReader(`{"from":"2026-10-10","to":"2026-10-17"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	settled := s.waitIdle(t)
	assert.Greater(t, settled.Generation, initial.Generation)
	assert.Equal(t, "Oct 10, 2026 - Oct 17, 2026", settled.RangeLabel)
	assert.Len(t, settled.Datasets.Sales, 7)

	code, body = s.get(t, "/")
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body, "dashboard loading")
	assert.Contains(t, body, "Oct 10, 2026 - Oct 17, 2026")

	code, metrics := s.get(t, "/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, metrics, `insightdash_refresh_total{outcome="applied",trigger="mount"} 1`)
	assert.Contains(t, metrics, `insightdash_refresh_total{outcome="applied",trigger="range"} 1`)
	assert.Contains(t, metrics, `insightdash_http_requests_total{code="202",route="/api/range"} 1`)
}

func TestDashboardExportAfterRefresh(t *testing.T) {
	s := newStack(t, 0)
	s.waitIdle(t)

	resp, err := s.server.Client().Get(s.server.URL + "/export.csv")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "insightdash-20261017-093000.csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "Metric,Value,Previous,Change %"))
	assert.Contains(t, string(body), "Date,Sales,Visitors,Orders")
}
