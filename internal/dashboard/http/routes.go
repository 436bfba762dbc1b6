package dashboardhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/insightdash/insightdash/internal/platform/httpx"
)

const defaultExportPerMinute = 10

// MountRoutes registers dashboard endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(h.exportPerMinute, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "export limit reached, retry later")
		}),
	)

	r.Get("/", h.handleDashboard)
	r.Post("/range", h.handleRangeForm)
	r.Get("/kpi/{id}", h.handleKPI)

	r.Route("/api", func(api chi.Router) {
		api.Get("/dashboard", h.handleAPIDashboard)
		api.Post("/range", h.handleAPIRange)
		api.Get("/sales", h.handleAPISales)
		api.Get("/metrics/{id}/history", h.handleAPIHistory)
	})

	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/export.csv", h.handleCSV)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
