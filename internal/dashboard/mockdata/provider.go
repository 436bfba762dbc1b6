package mockdata

import (
	"context"

	"github.com/insightdash/insightdash/internal/dashboard"
)

// Provider exposes a Generator through the dashboard.Provider contract. Calls never
// fail unless the context is already done.
type Provider struct {
	gen *Generator
}

// NewProvider wraps gen; a nil generator falls back to an unseeded one.
func NewProvider(gen *Generator) *Provider {
	if gen == nil {
		gen = NewGenerator()
	}
	return &Provider{gen: gen}
}

// Generator returns the wrapped generator.
func (p *Provider) Generator() *Generator {
	return p.gen
}

// Metrics implements dashboard.Provider.
func (p *Provider) Metrics(ctx context.Context) ([]dashboard.MetricSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.gen.MetricsData(), nil
}

// Sales implements dashboard.Provider.
func (p *Provider) Sales(ctx context.Context, days int) ([]dashboard.TimeSeriesPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.gen.SalesData(days), nil
}

// CustomerSegments implements dashboard.Provider.
func (p *Provider) CustomerSegments(ctx context.Context) ([]dashboard.CustomerSegmentShare, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.gen.CustomerSegmentData(), nil
}

// SalesByChannel implements dashboard.Provider.
func (p *Provider) SalesByChannel(ctx context.Context) ([]dashboard.ChannelShare, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.gen.SalesByChannelData(), nil
}

// TopProducts implements dashboard.Provider.
func (p *Provider) TopProducts(ctx context.Context) ([]dashboard.RankedProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.gen.TopProductsData(), nil
}

// MetricHistory implements dashboard.Provider.
func (p *Provider) MetricHistory(ctx context.Context, id dashboard.MetricID) ([]dashboard.HistoryPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.gen.MetricHistory(id), nil
}
