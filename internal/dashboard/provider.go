// Package dashboard holds the dashboard data contracts and the refresh controller that
// regenerates them when the selected date range changes.
package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Provider supplies every dataset rendered on the dashboard.
type Provider interface {
	Metrics(ctx context.Context) ([]MetricSummary, error)
	Sales(ctx context.Context, days int) ([]TimeSeriesPoint, error)
	CustomerSegments(ctx context.Context) ([]CustomerSegmentShare, error)
	SalesByChannel(ctx context.Context) ([]ChannelShare, error)
	TopProducts(ctx context.Context) ([]RankedProduct, error)
	MetricHistory(ctx context.Context, id MetricID) ([]HistoryPoint, error)
}

// Datasets is one consistent result of a refresh.
type Datasets struct {
	Metrics     []MetricSummary             `json:"metrics"`
	Sales       []TimeSeriesPoint           `json:"sales"`
	Segments    []CustomerSegmentShare      `json:"segments"`
	Channels    []ChannelShare              `json:"channels"`
	TopProducts []RankedProduct             `json:"top_products"`
	History     map[MetricID][]HistoryPoint `json:"history"`
}

// Load fetches all datasets concurrently. The first provider error aborts the load.
func Load(ctx context.Context, provider Provider, days int) (Datasets, error) {
	var data Datasets
	histories := make([][]HistoryPoint, len(MetricIDs))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		metrics, err := provider.Metrics(ctx)
		if err != nil {
			return err
		}
		data.Metrics = metrics
		return nil
	})

	g.Go(func() error {
		points, err := provider.Sales(ctx, days)
		if err != nil {
			return err
		}
		data.Sales = points
		return nil
	})

	g.Go(func() error {
		segments, err := provider.CustomerSegments(ctx)
		if err != nil {
			return err
		}
		data.Segments = segments
		return nil
	})

	g.Go(func() error {
		channels, err := provider.SalesByChannel(ctx)
		if err != nil {
			return err
		}
		data.Channels = channels
		return nil
	})

	g.Go(func() error {
		products, err := provider.TopProducts(ctx)
		if err != nil {
			return err
		}
		data.TopProducts = products
		return nil
	})

	for i, id := range MetricIDs {
		g.Go(func() error {
			points, err := provider.MetricHistory(ctx, id)
			if err != nil {
				return err
			}
			histories[i] = points
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Datasets{}, err
	}
	data.History = make(map[MetricID][]HistoryPoint, len(MetricIDs))
	for i, id := range MetricIDs {
		data.History[id] = histories[i]
	}
	return data, nil
}

// Metric returns the summary with the given id.
func (d Datasets) Metric(id MetricID) (MetricSummary, bool) {
	for _, metric := range d.Metrics {
		if metric.ID == id {
			return metric, true
		}
	}
	return MetricSummary{}, false
}
