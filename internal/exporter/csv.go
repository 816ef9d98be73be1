package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"retailpulse/internal/config"
	"retailpulse/pkg/contracts/domain"
)

// utf8BOM makes Excel recognise downloaded CSVs as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes order lines as CSV, both the cleaned dataset file
// the ETL produces and on-demand downloads for the dashboard.
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteCleanedFile writes the canonical cleaned dataset file. No BOM
// here; this file is read back by the dashboard, not opened in Excel.
func (w *CSVWriter) WriteCleanedFile(lines []domain.OrderLine) error {
	path := w.paths.CleanedFile

	slog.Info("Writing cleaned dataset",
		slog.String("path", path),
		slog.Int("rows", len(lines)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := writeOrderLines(file, lines); err != nil {
		return err
	}
	return file.Close()
}

// WriteExport writes a BOM-prefixed CSV download into the exports
// directory and returns its full path.
func (w *CSVWriter) WriteExport(filename string, lines []domain.OrderLine) (string, error) {
	path := w.paths.ExportPath(filename)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := w.Stream(file, lines); err != nil {
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// Stream writes a BOM-prefixed CSV directly to out, for streaming
// downloads without a temp file.
func (w *CSVWriter) Stream(out io.Writer, lines []domain.OrderLine) error {
	if _, err := out.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}
	return writeOrderLines(out, lines)
}

func writeOrderLines(out io.Writer, lines []domain.OrderLine) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(domain.CSVHeader); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, line := range lines {
		if err := writer.Write(line.CSVRecord()); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
