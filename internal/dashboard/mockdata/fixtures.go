package mockdata

import "github.com/insightdash/insightdash/internal/dashboard"

// MetricsData returns the four headline metrics. The values are fixed.
func (g *Generator) MetricsData() []dashboard.MetricSummary {
	return []dashboard.MetricSummary{
		dashboard.NewMetricSummary(dashboard.MetricRevenue, "Total Revenue", 254890, 231560, dashboard.IconBanknote),
		dashboard.NewMetricSummary(dashboard.MetricOrders, "Total Orders", 12456, 10983, dashboard.IconShoppingCart),
		dashboard.NewMetricSummary(dashboard.MetricCustomers, "New Customers", 3854, 3621, dashboard.IconUsers),
		dashboard.NewMetricSummary(dashboard.MetricAOV, "Avg. Order Value", 189, 201, dashboard.IconReceipt),
	}
}

// CustomerSegmentData returns the customer segment breakdown used by the pie chart.
func (g *Generator) CustomerSegmentData() []dashboard.CustomerSegmentShare {
	return []dashboard.CustomerSegmentShare{
		{ID: "1", Segment: "New Customers", Value: 35, Color: "var(--chart-1)"},
		{ID: "2", Segment: "Returning", Value: 45, Color: "var(--chart-2)"},
		{ID: "3", Segment: "Loyal", Value: 20, Color: "var(--chart-3)"},
	}
}

// TopProductsData returns the best sellers, already ranked.
func (g *Generator) TopProductsData() []dashboard.RankedProduct {
	return []dashboard.RankedProduct{
		{ID: "1", Name: "Wireless Headphones", Sales: 1245, Change: 12.5},
		{ID: "2", Name: "Smart Watch", Sales: 986, Change: 8.3},
		{ID: "3", Name: "Fitness Tracker", Sales: 879, Change: -3.2},
		{ID: "4", Name: "Bluetooth Speaker", Sales: 765, Change: 15.7},
		{ID: "5", Name: "Wireless Earbuds", Sales: 652, Change: 5.9},
	}
}

// SalesByChannelData returns revenue per marketing channel.
func (g *Generator) SalesByChannelData() []dashboard.ChannelShare {
	return []dashboard.ChannelShare{
		{Name: "Direct", Value: 45000},
		{Name: "Organic", Value: 28000},
		{Name: "Referral", Value: 15000},
		{Name: "Social", Value: 22000},
		{Name: "Email", Value: 18000},
	}
}
