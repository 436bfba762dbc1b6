package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdash/insightdash/internal/dashboard"
)

func readCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	reader := csv.NewReader(bytes.NewReader(buf.Bytes()))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteMetricsCSV(t *testing.T) {
	rng := dashboard.DateRange{
		From: time.Date(2026, time.October, 10, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC),
	}
	metrics := []dashboard.MetricSummary{
		dashboard.NewMetricSummary(dashboard.MetricAOV, "Avg. Order Value", 189, 201, dashboard.IconReceipt),
	}
	buf := &bytes.Buffer{}
	require.NoError(t, WriteMetricsCSV(buf, metrics, rng))

	records := readCSV(t, buf)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Range", "2026-10-10", "2026-10-17", ""}, records[1])
	assert.Equal(t, []string{"Avg. Order Value", "189.00", "201.00", "-5.97"}, records[2])
}

func TestWriteSalesCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteSalesCSV(buf, []dashboard.TimeSeriesPoint{
		{Date: "Oct 17", Sales: 12000, Visitors: 6000, Orders: 700},
	}))
	records := readCSV(t, buf)
	assert.Equal(t, [][]string{
		{"Date", "Sales", "Visitors", "Orders"},
		{"Oct 17", "12000", "6000", "700"},
	}, records)
}

func TestWriteSegmentsChannelsAndProducts(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteSegmentsCSV(buf, []dashboard.CustomerSegmentShare{{Segment: "Loyal", Value: 20}}))
	assert.Equal(t, []string{"Loyal", "20"}, readCSV(t, buf)[1])

	buf.Reset()
	require.NoError(t, WriteChannelsCSV(buf, []dashboard.ChannelShare{{Name: "Email", Value: 18000}}))
	assert.Equal(t, []string{"Email", "18000.00"}, readCSV(t, buf)[1])

	buf.Reset()
	require.NoError(t, WriteTopProductsCSV(buf, []dashboard.RankedProduct{
		{Name: "Smart Watch", Sales: 986, Change: 8.3},
		{Name: "Fitness Tracker", Sales: 879, Change: -3.2},
	}))
	records := readCSV(t, buf)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"2", "Fitness Tracker", "879", "-3.20"}, records[2])
}
