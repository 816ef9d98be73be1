package http

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/infrastructure"
	"retailpulse/internal/services"
)

func newHealthRouter(t *testing.T, loaded bool) chi.Router {
	t.Helper()
	data, paths := newTestFixture(t, loaded)
	handler := NewHealthHandler(services.NewHealthService(data, paths), infrastructure.GetLogger())

	r := chi.NewRouter()
	r.Mount("/api/health", handler.Routes())
	r.Get("/api/version", Version)
	return r
}

func TestGetHealth(t *testing.T) {
	router := newHealthRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status      string `json:"status"`
		DatasetRows int    `json:"dataset_rows"`
	}
	decodeJSON(t, rec, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, 5, body.DatasetRows)
}

func TestGetReadiness(t *testing.T) {
	tests := []struct {
		name       string
		loaded     bool
		wantCode   int
		wantStatus string
	}{
		{"ready when loaded", true, http.StatusOK, "ready"},
		{"unavailable before load", false, http.StatusServiceUnavailable, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newHealthRouter(t, tt.loaded)

			rec := doRequest(t, router, http.MethodGet, "/api/health/ready")
			assert.Equal(t, tt.wantCode, rec.Code)

			var body struct {
				Status string `json:"status"`
			}
			decodeJSON(t, rec, &body)
			assert.Equal(t, tt.wantStatus, body.Status)
		})
	}
}

func TestGetLiveness(t *testing.T) {
	router := newHealthRouter(t, false)

	rec := doRequest(t, router, http.MethodGet, "/api/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVersion(t *testing.T) {
	router := newHealthRouter(t, false)

	rec := doRequest(t, router, http.MethodGet, "/api/version")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeJSON(t, rec, &body)
	assert.Equal(t, infrastructure.ServiceName, body["name"])
	assert.Equal(t, infrastructure.ServiceVersion, body["version"])
}
