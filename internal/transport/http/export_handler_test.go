package http

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/exporter"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/services"
)

func newExportRouter(t *testing.T, loaded bool) chi.Router {
	t.Helper()
	data, paths := newTestFixture(t, loaded)
	svc := services.NewExportService(data, exporter.NewCSVWriter(paths), exporter.NewExcelWriter(nil), nil, nil)
	handler := NewExportHandler(svc, infrastructure.GetLogger(), apierrors.NewErrorHandler(infrastructure.GetLogger(), false))

	r := chi.NewRouter()
	r.Mount("/api/export", handler.Routes())
	return r
}

func TestExportCSV(t *testing.T) {
	router := newExportRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/api/export/csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "retailpulse_orders_")

	data := bytes.TrimPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF})
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 6)
}

func TestExportCSV_Filtered(t *testing.T) {
	router := newExportRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/api/export/csv?country=France")
	require.Equal(t, http.StatusOK, rec.Code)

	data := bytes.TrimPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF})
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestExportXLSX(t *testing.T) {
	router := newExportRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/api/export/xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestExport_NoDataset(t *testing.T) {
	router := newExportRouter(t, false)

	rec := doRequest(t, router, http.MethodGet, "/api/export/csv")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestExport_InvalidFilter(t *testing.T) {
	router := newExportRouter(t, true)

	rec := doRequest(t, router, http.MethodGet, "/api/export/xlsx?segment=vip")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
