package main

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/insightdash/insightdash/internal/app"
	"github.com/insightdash/insightdash/internal/dashboard"
	dashboardhttp "github.com/insightdash/insightdash/internal/dashboard/http"
	"github.com/insightdash/insightdash/internal/dashboard/mockdata"
	"github.com/insightdash/insightdash/internal/dashboard/svg"
	"github.com/insightdash/insightdash/internal/observability"
	"github.com/insightdash/insightdash/internal/view"
)

type lineRenderer struct{}

func (lineRenderer) Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error) {
	return svg.Line(width, height, series, labels, opts)
}

type barRenderer struct{}

func (barRenderer) Bars(width, height int, seriesA, seriesB []float64, labels []string, opts svg.BarOpts) (template.HTML, error) {
	return svg.Bars(width, height, seriesA, seriesB, labels, opts)
}

type pieRenderer struct{}

func (pieRenderer) Pie(width, height int, values []float64, labels, colors []string, opts svg.PieOpts) (template.HTML, error) {
	return svg.Pie(width, height, values, labels, colors, opts)
}

func main() {
	if app.InTestMode() {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	metrics := observability.NewMetrics()

	source := mockdata.UnseededSource()
	if cfg.DashboardRandomSeed != 0 {
		source = mockdata.NewSeededSource(cfg.DashboardRandomSeed)
		logger.Info("using seeded mock data", slog.Uint64("seed", cfg.DashboardRandomSeed))
	}
	generator := mockdata.NewGenerator(mockdata.WithSource(source))
	provider := mockdata.NewProvider(generator)

	controller := dashboard.NewController(provider, cfg.ControllerConfig(),
		dashboard.WithLogger(logger),
		dashboard.WithObserver(metrics),
	)
	defer controller.Close()
	if err := controller.Mount(ctx); err != nil {
		logger.Error("mount dashboard", slog.Any("error", err))
		os.Exit(1)
	}

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("load templates", slog.Any("error", err))
		os.Exit(1)
	}

	dashboardHandler := dashboardhttp.NewHandler(logger, controller, generator, templates,
		lineRenderer{}, barRenderer{}, pieRenderer{})
	dashboardHandler.WithLongPollTimeout(cfg.DashboardLongPollTimeout)
	dashboardHandler.WithExportRateLimit(cfg.ExportRateLimitPerMinute)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		DashboardHandler: dashboardHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
