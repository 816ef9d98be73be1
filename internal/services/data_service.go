package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"retailpulse/internal/analytics"
	"retailpulse/internal/config"
	"retailpulse/internal/errors"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/websocket"
	"retailpulse/pkg/contracts/domain"
	"retailpulse/pkg/contracts/events"
)

// DataService owns the in-memory dataset and answers every dashboard
// query against it. The dataset pointer is swapped atomically under the
// mutex on reload; queries run lock-free against the snapshot they took.
type DataService struct {
	mu      sync.RWMutex
	dataset *analytics.Dataset

	cfg      config.AnalyticsConfig
	paths    *config.Paths
	hub      *websocket.Hub
	metrics  *infrastructure.BusinessMetrics
	validate *validator.Validate
	logger   *slog.Logger
}

// NewDataService creates the service. hub and metrics may be nil in tests.
func NewDataService(cfg config.AnalyticsConfig, paths *config.Paths, hub *websocket.Hub, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &DataService{
		cfg:      cfg,
		paths:    paths,
		hub:      hub,
		metrics:  metrics,
		validate: validator.New(),
		logger:   logger.With(slog.String("service", "data")),
	}
}

// Load reads the cleaned dataset file and swaps it in. Open dashboards
// are told to refresh.
func (s *DataService) Load(ctx context.Context) error {
	if !config.FileExists(s.paths.CleanedFile) {
		return errors.ErrDatasetNotFound
	}

	start := time.Now()
	dataset, err := analytics.LoadCSV(s.paths.CleanedFile, s.cfg.HighValueCustomers, s.logger)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return err
	}

	s.mu.Lock()
	previous := s.dataset
	s.dataset = dataset
	s.mu.Unlock()

	if s.metrics != nil {
		delta := int64(dataset.Len())
		if previous != nil {
			delta -= int64(previous.Len())
		}
		s.metrics.DatasetRows.Add(ctx, delta)
		s.metrics.DatasetReloads.Add(ctx, 1)
	}

	s.logger.InfoContext(ctx, "dataset swapped",
		slog.Int("rows", dataset.Len()),
		slog.Duration("load_time", time.Since(start)))

	if s.hub != nil {
		bounds := dataset.Bounds()
		s.hub.BroadcastDataUpdate(ctx, events.DataUpdate{
			Rows:      dataset.Len(),
			MinDate:   bounds.MinDate,
			MaxDate:   bounds.MaxDate,
			Countries: len(dataset.Countries()),
			Products:  len(dataset.Products()),
			LoadedAt:  dataset.LoadedAt(),
		})
	}

	return nil
}

// Loaded reports whether a dataset is in memory.
func (s *DataService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset != nil
}

// Rows returns the current dataset size, zero when nothing is loaded.
func (s *DataService) Rows() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return 0
	}
	return s.dataset.Len()
}

// snapshot returns the current dataset or a 404 APIError.
func (s *DataService) snapshot() (*analytics.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return nil, errors.ErrDatasetNotFound
	}
	return s.dataset, nil
}

// view validates the request and applies the filter to the current dataset.
func (s *DataService) view(req FilterRequest) (*analytics.View, error) {
	dataset, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.InvalidRequestWithError(err)
	}
	filter, err := req.toFilter()
	if err != nil {
		return nil, err
	}
	return dataset.Select(filter), nil
}

func (s *DataService) observe(ctx context.Context, query string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.QueryDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("query", query)))
}

// Summary returns the widget-setup payload for the full dataset.
func (s *DataService) Summary(ctx context.Context) (analytics.Summary, error) {
	dataset, err := s.snapshot()
	if err != nil {
		return analytics.Summary{}, err
	}
	return dataset.Summary(), nil
}

// KPIs computes the headline metrics for the filtered view.
func (s *DataService) KPIs(ctx context.Context, req FilterRequest) (analytics.KPISet, error) {
	defer s.observe(ctx, "kpis", time.Now())
	v, err := s.view(req)
	if err != nil {
		return analytics.KPISet{}, err
	}
	return v.KPIs(), nil
}

// TopProducts ranks products by the requested metric. An empty metric
// means revenue; a non-positive limit falls back to the configured default.
func (s *DataService) TopProducts(ctx context.Context, req FilterRequest, metricName string, limit int) ([]analytics.ProductRank, error) {
	defer s.observe(ctx, "top_products", time.Now())

	var m analytics.ProductMetric
	switch metricName {
	case "", string(analytics.MetricRevenue):
		m = analytics.MetricRevenue
	case string(analytics.MetricQuantity):
		m = analytics.MetricQuantity
	case string(analytics.MetricPopularity):
		m = analytics.MetricPopularity
	default:
		return nil, errors.ErrValidation("metric", "expected revenue, quantity or popularity")
	}
	if limit <= 0 {
		limit = s.cfg.TopProducts
	}

	v, err := s.view(req)
	if err != nil {
		return nil, err
	}
	return v.TopProducts(m, limit), nil
}

// PriceDistribution returns the unit-price box plot stats.
func (s *DataService) PriceDistribution(ctx context.Context, req FilterRequest) (analytics.PriceStats, error) {
	defer s.observe(ctx, "price_distribution", time.Now())
	v, err := s.view(req)
	if err != nil {
		return analytics.PriceStats{}, err
	}
	return v.PriceDistribution(), nil
}

// Trend returns the sales-over-time series for the given interval.
// An empty interval means daily.
func (s *DataService) Trend(ctx context.Context, req FilterRequest, interval string) ([]analytics.TrendPoint, error) {
	defer s.observe(ctx, "trend", time.Now())

	iv, err := parseInterval(interval)
	if err != nil {
		return nil, err
	}
	v, err := s.view(req)
	if err != nil {
		return nil, err
	}
	return v.Trend(iv), nil
}

// WeekdayProfile returns sales aggregated by day of week.
func (s *DataService) WeekdayProfile(ctx context.Context, req FilterRequest) ([]analytics.TrendPoint, error) {
	defer s.observe(ctx, "trend_weekday", time.Now())
	v, err := s.view(req)
	if err != nil {
		return nil, err
	}
	return v.WeekdayProfile(), nil
}

// HourlyProfile returns sales aggregated by hour of day.
func (s *DataService) HourlyProfile(ctx context.Context, req FilterRequest) ([]analytics.TrendPoint, error) {
	defer s.observe(ctx, "trend_hourly", time.Now())
	v, err := s.view(req)
	if err != nil {
		return nil, err
	}
	return v.HourlyProfile(), nil
}

// Countries returns the sales-by-country ranking.
func (s *DataService) Countries(ctx context.Context, req FilterRequest) ([]analytics.CountrySales, error) {
	defer s.observe(ctx, "countries", time.Now())
	v, err := s.view(req)
	if err != nil {
		return nil, err
	}
	return v.CountrySalesRanking(s.cfg.TopCountries), nil
}

// CountrySeries returns one trend line per top country.
func (s *DataService) CountrySeries(ctx context.Context, req FilterRequest, interval string) ([]analytics.CountrySeries, error) {
	defer s.observe(ctx, "country_series", time.Now())

	iv, err := parseInterval(interval)
	if err != nil {
		return nil, err
	}
	v, err := s.view(req)
	if err != nil {
		return nil, err
	}
	return v.CountryTrends(iv, s.cfg.TopCountries), nil
}

// CustomerDistribution returns the customers-per-country pie slices.
func (s *DataService) CustomerDistribution(ctx context.Context, req FilterRequest) ([]analytics.DistributionSlice, error) {
	defer s.observe(ctx, "customer_distribution", time.Now())
	v, err := s.view(req)
	if err != nil {
		return nil, err
	}
	return v.CustomerDistribution(s.cfg.DistributionSlices), nil
}

// RFM returns the per-customer recency/frequency/monetary table.
func (s *DataService) RFM(ctx context.Context, req FilterRequest) ([]analytics.RFMRow, analytics.RFMSummary, error) {
	defer s.observe(ctx, "rfm", time.Now())
	v, err := s.view(req)
	if err != nil {
		return nil, analytics.RFMSummary{}, err
	}
	rows, summary := v.RFM()
	return rows, summary, nil
}

// OrdersPage is one page of the filtered order-line table.
type OrdersPage struct {
	Lines      []domain.OrderLine `json:"lines"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalLines int                `json:"total_lines"`
	TotalPages int                `json:"total_pages"`
}

// Orders returns one page of the filtered view. Page defaults to 1 and
// size to the configured default; size is clamped to the maximum.
func (s *DataService) Orders(ctx context.Context, req FilterRequest, page, size int) (OrdersPage, error) {
	defer s.observe(ctx, "orders", time.Now())

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = s.cfg.PageSize
	}
	if size > s.cfg.MaxPageSize {
		size = s.cfg.MaxPageSize
	}

	v, err := s.view(req)
	if err != nil {
		return OrdersPage{}, err
	}

	lines, total := v.Page(page, size)
	totalPages := (total + size - 1) / size

	return OrdersPage{
		Lines:      lines,
		Page:       page,
		PageSize:   size,
		TotalLines: total,
		TotalPages: totalPages,
	}, nil
}

// FilteredLines materialises the whole filtered view, for exports.
func (s *DataService) FilteredLines(ctx context.Context, req FilterRequest) ([]domain.OrderLine, error) {
	defer s.observe(ctx, "filtered_lines", time.Now())
	v, err := s.view(req)
	if err != nil {
		return nil, err
	}
	return v.Lines(), nil
}

func parseInterval(interval string) (analytics.TrendInterval, error) {
	switch interval {
	case "", string(analytics.IntervalDaily):
		return analytics.IntervalDaily, nil
	case string(analytics.IntervalMonthly):
		return analytics.IntervalMonthly, nil
	case string(analytics.IntervalYearly):
		return analytics.IntervalYearly, nil
	default:
		return "", errors.ErrValidation("interval", "expected daily, monthly or yearly")
	}
}
