// Package export serialises dashboard datasets to CSV.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/insightdash/insightdash/internal/dashboard"
)

// WriteMetricsCSV serialises the KPI cards with the range they were computed for.
func WriteMetricsCSV(w io.Writer, metrics []dashboard.MetricSummary, rng dashboard.DateRange) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value", "Previous", "Change %"}); err != nil {
		return err
	}
	if err := writer.Write([]string{"Range", rng.From.Format(time.DateOnly), rng.To.Format(time.DateOnly), ""}); err != nil {
		return err
	}
	for _, m := range metrics {
		if err := writer.Write([]string{
			m.Name,
			formatFloat(m.Value),
			formatFloat(m.PreviousValue),
			formatFloat(m.Change),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSalesCSV emits the daily performance series.
func WriteSalesCSV(w io.Writer, points []dashboard.TimeSeriesPoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Date", "Sales", "Visitors", "Orders"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := writer.Write([]string{
			p.Date,
			strconv.Itoa(p.Sales),
			strconv.Itoa(p.Visitors),
			strconv.Itoa(p.Orders),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSegmentsCSV emits the customer segment shares.
func WriteSegmentsCSV(w io.Writer, segments []dashboard.CustomerSegmentShare) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Segment", "Share %"}); err != nil {
		return err
	}
	for _, s := range segments {
		if err := writer.Write([]string{s.Segment, strconv.Itoa(s.Value)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteChannelsCSV emits revenue per channel.
func WriteChannelsCSV(w io.Writer, channels []dashboard.ChannelShare) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Channel", "Revenue"}); err != nil {
		return err
	}
	for _, c := range channels {
		if err := writer.Write([]string{c.Name, formatFloat(c.Value)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTopProductsCSV emits the ranked product list.
func WriteTopProductsCSV(w io.Writer, products []dashboard.RankedProduct) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Rank", "Product", "Units", "Change %"}); err != nil {
		return err
	}
	for i, p := range products {
		if err := writer.Write([]string{
			strconv.Itoa(i + 1),
			p.Name,
			strconv.Itoa(p.Sales),
			formatFloat(p.Change),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
