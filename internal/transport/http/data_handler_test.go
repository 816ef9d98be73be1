package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/config"
	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/services"
	"retailpulse/pkg/contracts/domain"
)

var testCleanedRows = []string{
	"536365,85123A,WHITE HANGING HEART,6,2010-12-01 08:26:00,2.55,17850,United Kingdom,15.30",
	"536365,71053,WHITE METAL LANTERN,6,2010-12-01 08:26:00,3.39,17850,United Kingdom,20.34",
	"536370,22728,ALARM CLOCK BAKELIKE,24,2010-12-01 08:45:00,3.75,12583,France,90.00",
	"536460,85123A,WHITE HANGING HEART,100,2010-12-05 10:00:00,2.55,17850,United Kingdom,255.00",
	"536520,22728,ALARM CLOCK BAKELIKE,2,2010-12-10 14:30:00,3.75,13047,United Kingdom,7.50",
}

func testConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		TopProducts:        10,
		TopCountries:       20,
		DistributionSlices: 5,
		HighValueCustomers: 100,
		PageSize:           100,
		MaxPageSize:        1000,
	}
}

func newTestFixture(t *testing.T, loaded bool) (*services.DataService, *config.Paths) {
	t.Helper()
	paths, err := config.NewPaths(config.PathsConfig{
		BaseDir:     t.TempDir(),
		DataDir:     "data",
		CleanedFile: "cleaned.csv",
		LogsDir:     "logs",
	})
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	svc := services.NewDataService(testConfig(), paths, nil, nil, nil)
	if loaded {
		content := strings.Join(append([]string{strings.Join(domain.CSVHeader, ",")}, testCleanedRows...), "\n") + "\n"
		require.NoError(t, os.WriteFile(paths.CleanedFile, []byte(content), 0o644))
		require.NoError(t, svc.Load(context.Background()))
	}
	return svc, paths
}

func newDataRouter(t *testing.T, loaded bool) (chi.Router, *services.DataService) {
	t.Helper()
	svc, _ := newTestFixture(t, loaded)
	handler := NewDataHandler(svc, infrastructure.GetLogger(), apierrors.NewErrorHandler(infrastructure.GetLogger(), false))

	r := chi.NewRouter()
	r.Mount("/api/data", handler.Routes())
	r.Post("/api/reload", handler.Reload)
	return r, svc
}

func doRequest(t *testing.T, router chi.Router, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
}

func TestGetSummary(t *testing.T) {
	router, _ := newDataRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/api/data/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Rows      int      `json:"rows"`
		Countries []string `json:"countries"`
	}
	decodeJSON(t, rec, &body)
	assert.Equal(t, 5, body.Rows)
	assert.Contains(t, body.Countries, "France")
}

func TestGetSummary_NoDataset(t *testing.T) {
	router, _ := newDataRouter(t, false)

	rec := doRequest(t, router, http.MethodGet, "/api/data/summary")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestGetKPIs(t *testing.T) {
	router, _ := newDataRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/api/data/kpis?country=France")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		TotalSales float64 `json:"total_sales"`
		Orders     int     `json:"orders"`
	}
	decodeJSON(t, rec, &body)
	assert.InDelta(t, 90.00, body.TotalSales, 1e-9)
	assert.Equal(t, 1, body.Orders)
}

func TestGetKPIs_InvalidSegment(t *testing.T) {
	router, _ := newDataRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/api/data/kpis?segment=vip")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTopProducts(t *testing.T) {
	router, _ := newDataRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/api/data/products/top?metric=quantity&limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Metric   string `json:"metric"`
		Products []struct {
			Description string `json:"description"`
		} `json:"products"`
	}
	decodeJSON(t, rec, &body)
	assert.Equal(t, "quantity", body.Metric)
	require.Len(t, body.Products, 2)
	assert.Equal(t, "WHITE HANGING HEART", body.Products[0].Description)
}

func TestGetTopProducts_BadParams(t *testing.T) {
	router, _ := newDataRouter(t, true)

	assert.Equal(t, http.StatusBadRequest, doRequest(t, router, http.MethodGet, "/api/data/products/top?limit=zero").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(t, router, http.MethodGet, "/api/data/products/top?metric=profit").Code)
}

func TestGetTrend(t *testing.T) {
	router, _ := newDataRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/api/data/trend?interval=monthly")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Interval string `json:"interval"`
		Points   []struct {
			Bucket string  `json:"bucket"`
			Sales  float64 `json:"sales"`
		} `json:"points"`
	}
	decodeJSON(t, rec, &body)
	assert.Equal(t, "monthly", body.Interval)
	require.Len(t, body.Points, 1)
	assert.Equal(t, "2010-12", body.Points[0].Bucket)
}

func TestGetTrendProfiles(t *testing.T) {
	router, _ := newDataRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/api/data/trend/weekday")
	require.Equal(t, http.StatusOK, rec.Code)
	var weekday struct {
		Points []struct {
			Bucket string `json:"bucket"`
		} `json:"points"`
	}
	decodeJSON(t, rec, &weekday)
	require.Len(t, weekday.Points, 7)
	assert.Equal(t, "Monday", weekday.Points[0].Bucket)

	rec = doRequest(t, router, http.MethodGet, "/api/data/trend/hourly")
	require.Equal(t, http.StatusOK, rec.Code)
	var hourly struct {
		Points []struct {
			Bucket string `json:"bucket"`
		} `json:"points"`
	}
	decodeJSON(t, rec, &hourly)
	assert.Len(t, hourly.Points, 24)
}

func TestGetCountries(t *testing.T) {
	router, _ := newDataRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/api/data/countries")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Countries []struct {
			Country string  `json:"country"`
			Sales   float64 `json:"sales"`
		} `json:"countries"`
	}
	decodeJSON(t, rec, &body)
	require.Len(t, body.Countries, 2)
	assert.Equal(t, "United Kingdom", body.Countries[0].Country)
}

func TestGetCustomerEndpoints(t *testing.T) {
	router, _ := newDataRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/api/data/customers/distribution")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/data/customers/rfm")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Customers []struct {
			CustomerID string `json:"customer_id"`
		} `json:"customers"`
		Summary struct {
			Customers int `json:"customers"`
		} `json:"summary"`
	}
	decodeJSON(t, rec, &body)
	assert.Len(t, body.Customers, 3)
	assert.Equal(t, 3, body.Summary.Customers)
}

func TestGetOrders(t *testing.T) {
	router, _ := newDataRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/api/data/orders?page=1&page_size=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Lines      []json.RawMessage `json:"lines"`
		TotalLines int               `json:"total_lines"`
		TotalPages int               `json:"total_pages"`
	}
	decodeJSON(t, rec, &body)
	assert.Len(t, body.Lines, 2)
	assert.Equal(t, 5, body.TotalLines)
	assert.Equal(t, 3, body.TotalPages)
}

func TestGetOrders_BadPage(t *testing.T) {
	router, _ := newDataRouter(t, true)

	assert.Equal(t, http.StatusBadRequest, doRequest(t, router, http.MethodGet, "/api/data/orders?page=-1").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(t, router, http.MethodGet, "/api/data/orders?page_size=abc").Code)
}

func TestReload(t *testing.T) {
	router, svc := newDataRouter(t, true)

	rec := doRequest(t, router, http.MethodPost, "/api/reload")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
	}
	decodeJSON(t, rec, &body)
	assert.Equal(t, "reloaded", body.Status)
	assert.True(t, svc.Loaded())
}

func TestReload_MissingFile(t *testing.T) {
	router, _ := newDataRouter(t, false)

	rec := doRequest(t, router, http.MethodPost, "/api/reload")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
