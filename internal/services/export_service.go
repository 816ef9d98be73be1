package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"retailpulse/internal/errors"
	"retailpulse/internal/exporter"
	"retailpulse/internal/infrastructure"
)

// ExportService produces spreadsheet downloads of the filtered view.
type ExportService struct {
	data    *DataService
	csv     *exporter.CSVWriter
	excel   *exporter.ExcelWriter
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewExportService creates the service. metrics may be nil in tests.
func NewExportService(data *DataService, csv *exporter.CSVWriter, excel *exporter.ExcelWriter, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &ExportService{
		data:    data,
		csv:     csv,
		excel:   excel,
		metrics: metrics,
		logger:  logger.With(slog.String("service", "export")),
	}
}

// Filename builds a timestamped download name like
// retailpulse_orders_20101201_082600.xlsx.
func Filename(format string, now time.Time) string {
	return "retailpulse_orders_" + now.Format("20060102_150405") + "." + format
}

// StreamCSV writes the filtered view as CSV to out and returns the row count.
func (s *ExportService) StreamCSV(ctx context.Context, out io.Writer, req FilterRequest) (int, error) {
	return s.stream(ctx, "csv", req, out)
}

// StreamXLSX writes the filtered view as an XLSX workbook to out and
// returns the row count.
func (s *ExportService) StreamXLSX(ctx context.Context, out io.Writer, req FilterRequest) (int, error) {
	return s.stream(ctx, "xlsx", req, out)
}

func (s *ExportService) stream(ctx context.Context, format string, req FilterRequest, out io.Writer) (int, error) {
	start := time.Now()

	lines, err := s.data.FilteredLines(ctx, req)
	if err != nil {
		return 0, err
	}

	switch format {
	case "csv":
		err = s.csv.Stream(out, lines)
	case "xlsx":
		err = s.excel.Write(out, lines)
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "export failed",
			slog.String("format", format),
			slog.String("error", err.Error()))
		return 0, errors.ErrExportFailed
	}

	s.record(ctx, format, len(lines), time.Since(start))
	s.logger.InfoContext(ctx, "export streamed",
		slog.String("format", format),
		slog.Int("rows", len(lines)),
		slog.Duration("duration", time.Since(start)))

	return len(lines), nil
}

func (s *ExportService) record(ctx context.Context, format string, rows int, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("format", format))
	s.metrics.ExportsTotal.Add(ctx, 1, attrs)
	s.metrics.ExportDuration.Record(ctx, elapsed.Seconds(), attrs)
	s.metrics.ExportRowsWritten.Add(ctx, int64(rows), attrs)
}
