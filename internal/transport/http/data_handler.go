package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/services"
)

// DataHandler serves the analytics endpoints of the dashboard.
type DataHandler struct {
	service      *services.DataService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler.
func NewDataHandler(service *services.DataService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes, mounted under /api/data.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/summary", h.GetSummary)
	r.Get("/kpis", h.GetKPIs)

	r.Route("/products", func(r chi.Router) {
		r.Get("/top", h.GetTopProducts)
		r.Get("/prices", h.GetPriceDistribution)
	})

	r.Route("/trend", func(r chi.Router) {
		r.Get("/", h.GetTrend)
		r.Get("/weekday", h.GetWeekdayProfile)
		r.Get("/hourly", h.GetHourlyProfile)
	})

	r.Route("/countries", func(r chi.Router) {
		r.Get("/", h.GetCountries)
		r.Get("/series", h.GetCountrySeries)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Get("/distribution", h.GetCustomerDistribution)
		r.Get("/rfm", h.GetRFM)
	})

	r.Get("/orders", h.GetOrders)

	return r
}

// filterRequest builds the service request from the query string.
// Countries and products accept repeated parameters as well as
// comma-separated lists.
func filterRequest(query url.Values) services.FilterRequest {
	return services.FilterRequest{
		From:      query.Get("from"),
		To:        query.Get("to"),
		Countries: multiValue(query, "country"),
		Products:  multiValue(query, "product"),
		Customer:  query.Get("customer"),
		MinQty:    intParam(query, "min_qty"),
		MaxQty:    intParam(query, "max_qty"),
		MinPrice:  floatParam(query, "min_price"),
		MaxPrice:  floatParam(query, "max_price"),
		Segment:   query.Get("segment"),
	}
}

func multiValue(query url.Values, key string) []string {
	var out []string
	for _, raw := range query[key] {
		for _, value := range strings.Split(raw, ",") {
			if value = strings.TrimSpace(value); value != "" {
				out = append(out, value)
			}
		}
	}
	return out
}

func intParam(query url.Values, key string) *int64 {
	raw := query.Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func floatParam(query url.Values, key string) *float64 {
	raw := query.Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// GetSummary handles GET /api/data/summary.
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// GetKPIs handles GET /api/data/kpis.
func (h *DataHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.service.KPIs(r.Context(), filterRequest(r.URL.Query()))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, kpis)
}

// GetTopProducts handles GET /api/data/products/top.
func (h *DataHandler) GetTopProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", "must be a positive integer"))
			return
		}
		limit = v
	}

	ranks, err := h.service.TopProducts(r.Context(), filterRequest(query), query.Get("metric"), limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"metric":   defaultString(query.Get("metric"), "revenue"),
		"products": ranks,
	})
}

// GetPriceDistribution handles GET /api/data/products/prices.
func (h *DataHandler) GetPriceDistribution(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.PriceDistribution(r.Context(), filterRequest(r.URL.Query()))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, stats)
}

// GetTrend handles GET /api/data/trend.
func (h *DataHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	points, err := h.service.Trend(r.Context(), filterRequest(query), query.Get("interval"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"interval": defaultString(query.Get("interval"), "daily"),
		"points":   points,
	})
}

// GetWeekdayProfile handles GET /api/data/trend/weekday.
func (h *DataHandler) GetWeekdayProfile(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.WeekdayProfile(r.Context(), filterRequest(r.URL.Query()))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"points": points})
}

// GetHourlyProfile handles GET /api/data/trend/hourly.
func (h *DataHandler) GetHourlyProfile(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.HourlyProfile(r.Context(), filterRequest(r.URL.Query()))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"points": points})
}

// GetCountries handles GET /api/data/countries.
func (h *DataHandler) GetCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.service.Countries(r.Context(), filterRequest(r.URL.Query()))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"countries": countries})
}

// GetCountrySeries handles GET /api/data/countries/series.
func (h *DataHandler) GetCountrySeries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	series, err := h.service.CountrySeries(r.Context(), filterRequest(query), query.Get("interval"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"interval": defaultString(query.Get("interval"), "daily"),
		"series":   series,
	})
}

// GetCustomerDistribution handles GET /api/data/customers/distribution.
func (h *DataHandler) GetCustomerDistribution(w http.ResponseWriter, r *http.Request) {
	slices, err := h.service.CustomerDistribution(r.Context(), filterRequest(r.URL.Query()))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"slices": slices})
}

// GetRFM handles GET /api/data/customers/rfm.
func (h *DataHandler) GetRFM(w http.ResponseWriter, r *http.Request) {
	rows, summary, err := h.service.RFM(r.Context(), filterRequest(r.URL.Query()))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"customers": rows,
		"summary":   summary,
	})
}

// GetOrders handles GET /api/data/orders with pagination.
func (h *DataHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := positiveIntOrZero(query.Get("page"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("page", "must be a positive integer"))
		return
	}
	size, err := positiveIntOrZero(query.Get("page_size"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("page_size", "must be a positive integer"))
		return
	}

	result, err := h.service.Orders(r.Context(), filterRequest(query), page, size)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Reload handles POST /api/reload: re-read the cleaned file and swap
// the dataset.
func (h *DataHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Load(r.Context()); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset reloaded via API",
		slog.Int("rows", summary.Rows))

	render.JSON(w, r, map[string]interface{}{
		"status":  "reloaded",
		"summary": summary,
	})
}

func positiveIntOrZero(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
