package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/services"
)

// ExportHandler streams spreadsheet downloads of the filtered view.
type ExportHandler struct {
	service      *services.ExportService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler.
func NewExportHandler(service *services.ExportService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes, mounted under /api/export.
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/csv", h.ExportCSV)
	r.Get("/xlsx", h.ExportXLSX)
	return r
}

// ExportCSV handles GET /api/export/csv.
func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	filename := services.Filename("csv", time.Now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	h.export(w, r, filename, func() (int, error) {
		return h.service.StreamCSV(r.Context(), w, filterRequest(r.URL.Query()))
	})
}

// ExportXLSX handles GET /api/export/xlsx.
func (h *ExportHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	filename := services.Filename("xlsx", time.Now())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	h.export(w, r, filename, func() (int, error) {
		return h.service.StreamXLSX(r.Context(), w, filterRequest(r.URL.Query()))
	})
}

func (h *ExportHandler) export(w http.ResponseWriter, r *http.Request, filename string, stream func() (int, error)) {
	rows, err := stream()
	if err != nil {
		// Nothing has been written yet when validation or the dataset
		// lookup fails, so a problem document is still possible.
		w.Header().Del("Content-Disposition")
		w.Header().Del("Content-Type")
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "download served",
		slog.String("filename", filename),
		slog.Int("rows", rows))
}
