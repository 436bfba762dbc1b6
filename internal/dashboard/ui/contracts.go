package ui

import (
	"html/template"
	"strings"
	"time"

	"github.com/insightdash/insightdash/internal/dashboard"
	"github.com/insightdash/insightdash/internal/dashboard/svg"
	"github.com/insightdash/insightdash/internal/format"
)

// InputDateLayout is the layout of the range picker inputs.
const InputDateLayout = "2006-01-02"

// SeriesKey selects which stream the performance chart plots.
type SeriesKey string

// Performance chart tabs.
const (
	SeriesSales    SeriesKey = "sales"
	SeriesVisitors SeriesKey = "visitors"
	SeriesOrders   SeriesKey = "orders"
)

// SeriesKeys lists the performance tabs in display order.
var SeriesKeys = []SeriesKey{SeriesSales, SeriesVisitors, SeriesOrders}

// ParseSeriesKey resolves a query value, defaulting to sales.
func ParseSeriesKey(raw string) SeriesKey {
	switch SeriesKey(strings.ToLower(strings.TrimSpace(raw))) {
	case SeriesVisitors:
		return SeriesVisitors
	case SeriesOrders:
		return SeriesOrders
	default:
		return SeriesSales
	}
}

// Label is the tab caption.
func (k SeriesKey) Label() string {
	switch k {
	case SeriesVisitors:
		return "Visitors"
	case SeriesOrders:
		return "Orders"
	default:
		return "Sales"
	}
}

// Color is the stroke used when the tab is active.
func (k SeriesKey) Color() string {
	switch k {
	case SeriesVisitors:
		return "var(--chart-2)"
	case SeriesOrders:
		return "var(--chart-3)"
	default:
		return "var(--chart-1)"
	}
}

// Values extracts the stream for this key.
func (k SeriesKey) Values(points []dashboard.TimeSeriesPoint) []float64 {
	values := make([]float64, 0, len(points))
	for _, p := range points {
		switch k {
		case SeriesVisitors:
			values = append(values, float64(p.Visitors))
		case SeriesOrders:
			values = append(values, float64(p.Orders))
		default:
			values = append(values, float64(p.Sales))
		}
	}
	return values
}

// SeriesTab is one entry of the performance tab strip.
type SeriesTab struct {
	Key    SeriesKey
	Label  string
	Active bool
}

// MetricCard is a rendered KPI card.
type MetricCard struct {
	ID        dashboard.MetricID
	Name      string
	Value     string
	Change    string
	Positive  bool
	Icon      template.HTML
	Sparkline template.HTML
}

// ProductRow is one line of the top products list.
type ProductRow struct {
	Rank     int
	Name     string
	Sales    string
	Change   string
	Positive bool
}

// SegmentRow is a legend entry for the customer segment chart.
type SegmentRow struct {
	Segment string
	Share   string
	Color   string
}

// DashboardViewModel combines all dashboard data for rendering.
type DashboardViewModel struct {
	RangeLabel  string
	From        string
	To          string
	Loading     bool
	Generation  uint64
	UpdatedAt   time.Time
	Metrics     []MetricCard
	Series      SeriesKey
	Tabs        []SeriesTab
	SalesSVG    template.HTML
	SegmentsSVG template.HTML
	ChannelsSVG template.HTML
	Segments    []SegmentRow
	Products    []ProductRow
}

// MetricDetailViewModel backs the KPI detail page.
type MetricDetailViewModel struct {
	Card     MetricCard
	Current  string
	Previous string
	Change   string
	Positive bool
	TrendSVG template.HTML
	History  []dashboard.HistoryPoint
}

// LineRenderer abstracts SVG line chart rendering for the dashboard.
type LineRenderer interface {
	Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error)
}

// BarRenderer abstracts SVG bar chart rendering for the dashboard.
type BarRenderer interface {
	Bars(width, height int, seriesA, seriesB []float64, labels []string, opts svg.BarOpts) (template.HTML, error)
}

// PieRenderer abstracts SVG pie chart rendering for the dashboard.
type PieRenderer interface {
	Pie(width, height int, values []float64, labels, colors []string, opts svg.PieOpts) (template.HTML, error)
}

// ToSeriesTabs marks the active tab.
func ToSeriesTabs(active SeriesKey) []SeriesTab {
	tabs := make([]SeriesTab, 0, len(SeriesKeys))
	for _, key := range SeriesKeys {
		tabs = append(tabs, SeriesTab{Key: key, Label: key.Label(), Active: key == active})
	}
	return tabs
}

// ToMetricCard formats a metric summary; the sparkline is attached by the caller.
func ToMetricCard(m dashboard.MetricSummary) MetricCard {
	return MetricCard{
		ID:       m.ID,
		Name:     m.Name,
		Value:    m.ID.FormatValue(m.Value),
		Change:   format.Percent(m.Change),
		Positive: m.Change >= 0,
		Icon:     IconSVG(m.Icon),
	}
}

// ToProductRows ranks products in their given order starting at 1.
func ToProductRows(products []dashboard.RankedProduct) []ProductRow {
	rows := make([]ProductRow, 0, len(products))
	for i, p := range products {
		rows = append(rows, ProductRow{
			Rank:     i + 1,
			Name:     p.Name,
			Sales:    format.Number(float64(p.Sales)),
			Change:   format.Percent(p.Change),
			Positive: p.Change >= 0,
		})
	}
	return rows
}

// ToSegmentRows builds the segment legend with whole-percent shares.
func ToSegmentRows(segments []dashboard.CustomerSegmentShare) []SegmentRow {
	total := 0
	for _, s := range segments {
		total += s.Value
	}
	rows := make([]SegmentRow, 0, len(segments))
	for _, s := range segments {
		share := "0%"
		if total > 0 {
			share = svg.PercentLabel(float64(s.Value) / float64(total))
		}
		rows = append(rows, SegmentRow{Segment: s.Segment, Share: share, Color: s.Color})
	}
	return rows
}

// SalesLabels extracts the x-axis labels of the performance chart.
func SalesLabels(points []dashboard.TimeSeriesPoint) []string {
	labels := make([]string, 0, len(points))
	for _, p := range points {
		labels = append(labels, p.Date)
	}
	return labels
}

// HistorySeries splits sparkline points into values and labels.
func HistorySeries(points []dashboard.HistoryPoint) ([]float64, []string) {
	values := make([]float64, 0, len(points))
	labels := make([]string, 0, len(points))
	for _, p := range points {
		values = append(values, p.Value)
		labels = append(labels, p.Date)
	}
	return values, labels
}

// TickFormatFor returns the axis formatter for a metric or series.
func TickFormatFor(monetary bool) svg.TickFormatter {
	if monetary {
		return format.Currency
	}
	return format.Number
}
