package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"retailpulse/pkg/contracts/domain"
)

const (
	ordersSheet  = "Orders"
	summarySheet = "Summary"
)

// ExcelWriter renders order lines as an XLSX workbook with an Orders
// sheet plus a small Summary sheet describing the export.
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a new XLSX writer instance.
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger.With(slog.String("component", "excel_writer"))}
}

// Write streams the workbook to out. The Orders sheet is built with a
// stream writer so large filtered views do not balloon memory.
func (w *ExcelWriter) Write(out io.Writer, lines []domain.OrderLine) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return fmt.Errorf("failed to name orders sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(ordersSheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(domain.CSVHeader))
	for i, name := range domain.CSVHeader {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell for row %d: %w", i, err)
		}
		row := []interface{}{
			line.InvoiceNo,
			line.StockCode,
			line.Description,
			line.Quantity,
			line.InvoiceDate.Format(domain.CSVDateFormat),
			line.UnitPrice,
			line.CustomerID,
			line.Country,
			line.TotalPrice,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush orders sheet: %w", err)
	}

	if err := w.addSummarySheet(f, lines); err != nil {
		return err
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Debug("wrote XLSX export", slog.Int("rows", len(lines)))
	return nil
}

// addSummarySheet writes the export metadata next to the data.
func (w *ExcelWriter) addSummarySheet(f *excelize.File, lines []domain.OrderLine) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	var totalSales float64
	var totalQty int64
	var first, last time.Time
	for i, line := range lines {
		totalSales += line.TotalPrice
		totalQty += line.Quantity
		if i == 0 || line.InvoiceDate.Before(first) {
			first = line.InvoiceDate
		}
		if line.InvoiceDate.After(last) {
			last = line.InvoiceDate
		}
	}

	rows := [][]string{
		{"Exported rows", formatInt(int64(len(lines)))},
		{"Total sales", formatFloat(totalSales)},
		{"Total quantity", formatInt(totalQty)},
		{"First invoice", formatDate(first)},
		{"Last invoice", formatDate(last)},
		{"Generated at", time.Now().Format(time.RFC3339)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to compute summary cell: %w", err)
		}
		if err := f.SetSheetRow(summarySheet, cell, &[]interface{}{row[0], row[1]}); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.CSVDateFormat)
}
