// Package mockdata synthesises the dashboard datasets from fixtures and random draws.
package mockdata

import (
	"fmt"
	"time"

	"github.com/insightdash/insightdash/internal/dashboard"
)

const (
	dateLabelLayout = "Jan 02"
	historyLength   = 10
)

// Value bounds of the random performance streams.
const (
	SalesMin    = 10000
	SalesMax    = 25000
	VisitorsMin = 5000
	VisitorsMax = 15000
	OrdersMin   = 500
	OrdersMax   = 1200
)

// Generator produces dashboard datasets. It keeps no state between calls apart from the
// entropy source, so every call yields freshly generated records.
type Generator struct {
	src Source
	now func() time.Time
}

// Option customises a Generator.
type Option func(*Generator)

// WithSource replaces the unseeded entropy source.
func WithSource(src Source) Option {
	return func(g *Generator) {
		if src != nil {
			g.src = src
		}
	}
}

// WithClock overrides the clock that defines "today".
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGenerator builds a Generator backed by the unseeded source and wall clock.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{src: UnseededSource(), now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RandomData returns count independent uniform integers in [min, max]. Bounds given in
// the wrong order are swapped; a non-positive count yields an empty slice.
func (g *Generator) RandomData(count, min, max int) []int {
	if count <= 0 {
		return []int{}
	}
	if min > max {
		min, max = max, min
	}
	values := make([]int, count)
	for i := range values {
		values[i] = g.src.IntN(max-min+1) + min
	}
	return values
}

// Dates returns days consecutive "Jan 02" labels ending today, oldest first.
func (g *Generator) Dates(days int) []string {
	if days <= 0 {
		return []string{}
	}
	today := g.now()
	labels := make([]string, days)
	for i := range labels {
		labels[i] = today.AddDate(0, 0, -(days - i - 1)).Format(dateLabelLayout)
	}
	return labels
}

// SalesData returns a time series of length days with fresh random streams.
func (g *Generator) SalesData(days int) []dashboard.TimeSeriesPoint {
	dates := g.Dates(days)
	sales := g.RandomData(days, SalesMin, SalesMax)
	visitors := g.RandomData(days, VisitorsMin, VisitorsMax)
	orders := g.RandomData(days, OrdersMin, OrdersMax)

	points := make([]dashboard.TimeSeriesPoint, len(dates))
	for i, date := range dates {
		points[i] = dashboard.TimeSeriesPoint{
			Date:     date,
			Sales:    sales[i],
			Visitors: visitors[i],
			Orders:   orders[i],
		}
	}
	return points
}

// FilterByDateRange returns fresh sales data sized to the range. The data argument is
// not consulted: the result is regenerated rather than selected from it.
func (g *Generator) FilterByDateRange(data []dashboard.TimeSeriesPoint, from, to time.Time) []dashboard.TimeSeriesPoint {
	_ = data
	return g.SalesData(dashboard.DaysBetween(from, to))
}

// MetricHistory returns the sparkline samples for a metric card.
func (g *Generator) MetricHistory(id dashboard.MetricID) []dashboard.HistoryPoint {
	min, max, multiplier := historyScale(id)
	points := make([]dashboard.HistoryPoint, historyLength)
	for i := range points {
		points[i] = dashboard.HistoryPoint{
			Date:  fmt.Sprintf("Day %d", i+1),
			Value: float64(g.RandomData(1, min, max)[0] * multiplier),
		}
	}
	return points
}

func historyScale(id dashboard.MetricID) (min, max, multiplier int) {
	switch id {
	case dashboard.MetricRevenue:
		return 5, 25, 1000
	case dashboard.MetricOrders:
		return 5, 25, 100
	case dashboard.MetricCustomers:
		return 5, 25, 10
	case dashboard.MetricAOV:
		return 160, 220, 1
	default:
		return 5, 25, 1
	}
}
