package analytics

import (
	"time"
)

// Segment selects a customer cohort computed over the full dataset.
type Segment string

const (
	SegmentAll       Segment = "all"
	SegmentNew       Segment = "new"
	SegmentRepeat    Segment = "repeat"
	SegmentHighValue Segment = "high_value"
)

// ValidSegment reports whether s is a known segment name.
// The empty string is treated as SegmentAll.
func ValidSegment(s Segment) bool {
	switch s {
	case "", SegmentAll, SegmentNew, SegmentRepeat, SegmentHighValue:
		return true
	}
	return false
}

// ProductMetric selects the ranking dimension for top products.
type ProductMetric string

const (
	MetricRevenue    ProductMetric = "revenue"
	MetricQuantity   ProductMetric = "quantity"
	MetricPopularity ProductMetric = "popularity"
)

// TrendInterval selects the bucketing for sales-over-time series.
type TrendInterval string

const (
	IntervalDaily   TrendInterval = "daily"
	IntervalMonthly TrendInterval = "monthly"
	IntervalYearly  TrendInterval = "yearly"
)

// Filter narrows the dataset to the rows the dashboard is looking at.
// Nil range bounds mean unbounded on that side.
type Filter struct {
	From      *time.Time
	To        *time.Time
	Countries []string
	Products  []string
	Customer  string // substring match on CustomerID
	MinQty    *int64
	MaxQty    *int64
	MinPrice  *float64
	MaxPrice  *float64
	Segment   Segment
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	return f.From == nil && f.To == nil &&
		len(f.Countries) == 0 && len(f.Products) == 0 &&
		f.Customer == "" &&
		f.MinQty == nil && f.MaxQty == nil &&
		f.MinPrice == nil && f.MaxPrice == nil &&
		(f.Segment == "" || f.Segment == SegmentAll)
}

// Bounds describes the value ranges of the full dataset, used by the
// dashboard to initialise its filter widgets.
type Bounds struct {
	MinDate  time.Time `json:"min_date"`
	MaxDate  time.Time `json:"max_date"`
	MinQty   int64     `json:"min_qty"`
	MaxQty   int64     `json:"max_qty"`
	MinPrice float64   `json:"min_price"`
	MaxPrice float64   `json:"max_price"`
}

// Summary is the widget-setup payload: bounds plus distinct values.
type Summary struct {
	Rows      int       `json:"rows"`
	Bounds    Bounds    `json:"bounds"`
	Countries []string  `json:"countries"`
	Products  []string  `json:"products"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// KPISet is the headline metrics block of the dashboard.
type KPISet struct {
	TotalSales         float64 `json:"total_sales"`
	Orders             int     `json:"orders"`
	Customers          int     `json:"customers"`
	Products           int     `json:"products"`
	AvgOrderValue      float64 `json:"avg_order_value"`
	MeanInterOrderDays float64 `json:"mean_inter_order_days"`
}

// ProductRank is one row of the top-products chart.
type ProductRank struct {
	Description string  `json:"description"`
	StockCode   string  `json:"stock_code"`
	Revenue     float64 `json:"revenue"`
	Quantity    int64   `json:"quantity"`
	Orders      int     `json:"orders"`
}

// TrendPoint is one bucket of a sales-over-time series.
type TrendPoint struct {
	Bucket string  `json:"bucket"`
	Sales  float64 `json:"sales"`
	Orders int     `json:"orders"`
}

// CountrySales is one bar of the sales-by-country chart.
type CountrySales struct {
	Country string  `json:"country"`
	Sales   float64 `json:"sales"`
	Orders  int     `json:"orders"`
}

// CountrySeries is one line of the per-country trend chart.
type CountrySeries struct {
	Country string       `json:"country"`
	Points  []TrendPoint `json:"points"`
}

// DistributionSlice is one slice of the customer-distribution pie.
type DistributionSlice struct {
	Country   string  `json:"country"`
	Customers int     `json:"customers"`
	Share     float64 `json:"share"`
}

// RFMRow is the recency/frequency/monetary triple for one customer.
type RFMRow struct {
	CustomerID  string  `json:"customer_id"`
	RecencyDays int     `json:"recency_days"`
	Frequency   int     `json:"frequency"`
	Monetary    float64 `json:"monetary"`
}

// RFMStats summarises one RFM dimension.
type RFMStats struct {
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

// RFMSummary is the describe() block shown next to the RFM scatter.
type RFMSummary struct {
	Customers int      `json:"customers"`
	Recency   RFMStats `json:"recency"`
	Frequency RFMStats `json:"frequency"`
	Monetary  RFMStats `json:"monetary"`
}

// PriceStats backs the unit-price box plot.
type PriceStats struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}
