package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrend_Daily(t *testing.T) {
	d := testDataset(t)
	points := d.Select(Filter{}).Trend(IntervalDaily)

	require.Len(t, points, 3)
	assert.Equal(t, "2010-12-01", points[0].Bucket)
	assert.InDelta(t, 125.64, points[0].Sales, 1e-9) // 15.30+20.34+90.00
	assert.Equal(t, 2, points[0].Orders)
	assert.Equal(t, "2010-12-05", points[1].Bucket)
	assert.Equal(t, "2010-12-10", points[2].Bucket)
}

func TestTrend_MonthlyAndYearly(t *testing.T) {
	d := testDataset(t)
	v := d.Select(Filter{})

	monthly := v.Trend(IntervalMonthly)
	require.Len(t, monthly, 1)
	assert.Equal(t, "2010-12", monthly[0].Bucket)
	assert.InDelta(t, 388.14, monthly[0].Sales, 1e-9)
	assert.Equal(t, 4, monthly[0].Orders)

	yearly := v.Trend(IntervalYearly)
	require.Len(t, yearly, 1)
	assert.Equal(t, "2010", yearly[0].Bucket)
}

func TestTrend_EmptyView(t *testing.T) {
	d := testDataset(t)
	points := d.Select(Filter{Countries: []string{"Germany"}}).Trend(IntervalDaily)

	assert.Empty(t, points)
}

func TestWeekdayProfile(t *testing.T) {
	d := testDataset(t)
	points := d.Select(Filter{}).WeekdayProfile()

	require.Len(t, points, 7)
	assert.Equal(t, "Monday", points[0].Bucket)
	assert.Equal(t, "Sunday", points[6].Bucket)

	// 2010-12-01 was a Wednesday, 12-05 a Sunday, 12-10 a Friday.
	byDay := make(map[string]TrendPoint, len(points))
	for _, p := range points {
		byDay[p.Bucket] = p
	}
	assert.InDelta(t, 125.64, byDay["Wednesday"].Sales, 1e-9)
	assert.InDelta(t, 255.00, byDay["Sunday"].Sales, 1e-9)
	assert.InDelta(t, 7.50, byDay["Friday"].Sales, 1e-9)
	assert.Zero(t, byDay["Monday"].Sales)
}

func TestHourlyProfile(t *testing.T) {
	d := testDataset(t)
	points := d.Select(Filter{}).HourlyProfile()

	require.Len(t, points, 24)
	assert.Equal(t, "00:00", points[0].Bucket)
	assert.Equal(t, "23:00", points[23].Bucket)

	// Both 08:26 and 08:45 invoices fall into the 08:00 bucket.
	assert.InDelta(t, 125.64, points[8].Sales, 1e-9)
	assert.Equal(t, 2, points[8].Orders)
	assert.Zero(t, points[3].Sales)
}

func TestCountryTrends(t *testing.T) {
	d := testDataset(t)
	series := d.Select(Filter{}).CountryTrends(IntervalMonthly, 10)

	require.Len(t, series, 2)
	// Ordered by total sales, UK first.
	assert.Equal(t, "United Kingdom", series[0].Country)
	assert.Equal(t, "France", series[1].Country)

	require.Len(t, series[1].Points, 1)
	assert.InDelta(t, 90.00, series[1].Points[0].Sales, 1e-9)
}

func TestCountryTrends_Limit(t *testing.T) {
	d := testDataset(t)
	series := d.Select(Filter{}).CountryTrends(IntervalMonthly, 1)

	require.Len(t, series, 1)
	assert.Equal(t, "United Kingdom", series[0].Country)
}
