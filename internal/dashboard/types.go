package dashboard

import (
	"math"
	"time"

	"github.com/insightdash/insightdash/internal/format"
)

// MetricID identifies one of the headline KPI cards.
type MetricID string

// Supported metric identifiers.
const (
	MetricRevenue   MetricID = "revenue"
	MetricOrders    MetricID = "orders"
	MetricCustomers MetricID = "customers"
	MetricAOV       MetricID = "aov"
)

// MetricIDs lists the KPI cards in display order.
var MetricIDs = []MetricID{MetricRevenue, MetricOrders, MetricCustomers, MetricAOV}

// ParseMetricID resolves a path value into a known MetricID.
func ParseMetricID(raw string) (MetricID, bool) {
	for _, id := range MetricIDs {
		if string(id) == raw {
			return id, true
		}
	}
	return "", false
}

// IsMonetary reports whether values of the metric are rendered as currency.
func (id MetricID) IsMonetary() bool {
	return id == MetricRevenue || id == MetricAOV
}

// FormatValue renders a value of this metric for display.
func (id MetricID) FormatValue(v float64) string {
	if id.IsMonetary() {
		return format.Currency(v)
	}
	return format.Number(v)
}

// Icon names the glyph shown next to a metric.
type Icon string

// Known icons.
const (
	IconBanknote     Icon = "banknote"
	IconShoppingCart Icon = "shopping-cart"
	IconUsers        Icon = "users"
	IconReceipt      Icon = "receipt"
)

// MetricSummary is a named KPI with its current and previous period values.
type MetricSummary struct {
	ID            MetricID `json:"id"`
	Name          string   `json:"name"`
	Value         float64  `json:"value"`
	PreviousValue float64  `json:"previous_value"`
	Change        float64  `json:"change"`
	Icon          Icon     `json:"icon"`
}

// NewMetricSummary builds a summary whose Change is derived from the two values.
func NewMetricSummary(id MetricID, name string, value, previous float64, icon Icon) MetricSummary {
	return MetricSummary{
		ID:            id,
		Name:          name,
		Value:         value,
		PreviousValue: previous,
		Change:        format.PercentageChange(value, previous),
		Icon:          icon,
	}
}

// TimeSeriesPoint is one day of the performance chart.
type TimeSeriesPoint struct {
	Date     string `json:"date"`
	Sales    int    `json:"sales"`
	Visitors int    `json:"visitors"`
	Orders   int    `json:"orders"`
}

// ChannelShare is the revenue attributed to one marketing channel.
type ChannelShare struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// CustomerSegmentShare is the percentage of customers in one segment.
type CustomerSegmentShare struct {
	ID      string `json:"id"`
	Segment string `json:"segment"`
	Value   int    `json:"value"`
	Color   string `json:"color"`
}

// RankedProduct is an entry of the top products list.
type RankedProduct struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Sales  int     `json:"sales"`
	Change float64 `json:"change"`
}

// HistoryPoint is one sample of a metric sparkline.
type HistoryPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// DateRange is an inclusive pair of endpoints selected in the range picker.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Days returns the number of days covered by the range.
func (r DateRange) Days() int {
	return DaysBetween(r.From, r.To)
}

// Label renders the range for the page header.
func (r DateRange) Label() string {
	return format.DateRange(r.From, r.To)
}

// DefaultRange returns the range ending at now and starting days earlier.
func DefaultRange(now time.Time, days int) DateRange {
	return DateRange{From: now.AddDate(0, 0, -days), To: now}
}

// DaysBetween returns ceil((to-from)/24h) in millisecond precision. Ranges where to is
// not after from yield zero or a negative count.
func DaysBetween(from, to time.Time) int {
	const dayMillis = 24 * 60 * 60 * 1000
	millis := to.Sub(from).Milliseconds()
	return int(math.Ceil(float64(millis) / dayMillis))
}
