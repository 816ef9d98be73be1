package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// ParsedFile is the raw outcome of reading one input file. Lines have
// types coerced but no cleaning rules applied yet; rows that could not
// be coerced at all are only counted.
type ParsedFile struct {
	Path      string
	InputRows int
	Malformed int
	Lines     []domain.OrderLine
}

// Parser reads raw transaction logs in CSV or XLSX form.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser with the given logger.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With(slog.String("component", "parser"))}
}

// dateLayouts are tried in order when parsing InvoiceDate. The raw UCI
// dump uses "M/D/YYYY H:MM"; re-cleaned files use the canonical layout.
var dateLayouts = []string{
	domain.CSVDateFormat,
	"2006-01-02T15:04:05",
	"1/2/2006 15:04",
	"1/2/06 15:04",
	"01/02/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"2006-01-02",
}

// ParseFile reads a raw transaction log and coerces its rows.
// The format is chosen by file extension: .xlsx via excelize,
// anything else as CSV.
func (p *Parser) ParseFile(path string) (*ParsedFile, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = p.readExcelRows(path)
	default:
		rows, err = p.readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.NewParsingError(fmt.Sprintf("file %s contains no rows", path), nil)
	}

	header, dataRows, err := p.mapColumns(rows)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedFile{Path: path, InputRows: len(dataRows)}

	for _, row := range dataRows {
		line, ok := p.coerceRow(header, row)
		if !ok {
			parsed.Malformed++
			continue
		}
		parsed.Lines = append(parsed.Lines, line)
	}

	p.logger.Info("parsed input file",
		slog.String("path", path),
		slog.Int("input_rows", parsed.InputRows),
		slog.Int("coerced", len(parsed.Lines)),
		slog.Int("malformed", parsed.Malformed))

	return parsed, nil
}

// readCSVRows reads all records from a CSV file, tolerating ragged rows.
func (p *Parser) readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	reader := csv.NewReader(stripBOM(f))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("failed to read CSV %s", path), err)
		}
		rows = append(rows, record)
	}

	return rows, nil
}

// readExcelRows reads the first sheet that looks like a transaction log.
func (p *Parser) readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) < 2 {
			continue
		}
		// A usable sheet has an invoice column and a quantity column
		// somewhere in its first rows.
		limit := len(rows)
		if limit > 4 {
			limit = 4
		}
		for _, row := range rows[:limit] {
			rowText := strings.ToLower(strings.Join(row, " "))
			if strings.Contains(rowText, "invoice") && strings.Contains(rowText, "quantity") {
				p.logger.Debug("found transaction sheet",
					slog.String("path", path),
					slog.String("sheet", name),
					slog.Int("rows", len(rows)))
				return rows, nil
			}
		}
	}

	return nil, errors.NewParsingError(fmt.Sprintf("no transaction sheet found in %s", path), nil)
}

// columnIndexes maps logical fields to column positions.
type columnIndexes struct {
	invoice, stock, description, quantity, date, price, customer, country int
}

// mapColumns locates the header row and maps column positions by name.
// Column order in raw exports is not stable, so headers are matched on
// normalized names with a few known synonyms.
func (p *Parser) mapColumns(rows [][]string) (columnIndexes, [][]string, error) {
	idx := columnIndexes{invoice: -1, stock: -1, description: -1, quantity: -1, date: -1, price: -1, customer: -1, country: -1}

	headerRow := -1
	for i, row := range rows {
		if len(row) < 5 {
			continue
		}
		rowText := strings.ToLower(strings.Join(row, " "))
		if !strings.Contains(rowText, "invoice") || !strings.Contains(rowText, "quantity") {
			continue
		}

		headerRow = i
		for j, header := range row {
			switch normalizeHeader(header) {
			case "invoiceno", "invoice", "invoicenumber", "orderid":
				idx.invoice = j
			case "stockcode", "productcode", "sku":
				idx.stock = j
			case "description", "product", "productname", "item":
				idx.description = j
			case "quantity", "qty":
				idx.quantity = j
			case "invoicedate", "date", "orderdate":
				idx.date = j
			case "unitprice", "price":
				idx.price = j
			case "customerid", "customer":
				idx.customer = j
			case "country":
				idx.country = j
			}
		}
		break
	}

	if headerRow == -1 {
		return idx, nil, errors.NewParsingError("could not find header row in transaction log", nil)
	}

	for name, pos := range map[string]int{
		"invoice":  idx.invoice,
		"quantity": idx.quantity,
		"date":     idx.date,
		"price":    idx.price,
	} {
		if pos == -1 {
			return idx, nil, errors.NewParsingError(fmt.Sprintf("required column missing: %s", name), nil)
		}
	}

	return idx, rows[headerRow+1:], nil
}

// coerceRow converts one raw row into an OrderLine. Returns false when a
// required field cannot be coerced; semantic validity is the Cleaner's job.
func (p *Parser) coerceRow(idx columnIndexes, row []string) (domain.OrderLine, bool) {
	get := func(pos int) string {
		if pos >= 0 && pos < len(row) {
			return strings.TrimSpace(row[pos])
		}
		return ""
	}

	if len(row) == 0 || get(idx.invoice) == "" {
		return domain.OrderLine{}, false
	}

	qty, err := strconv.ParseInt(strings.ReplaceAll(get(idx.quantity), ",", ""), 10, 64)
	if err != nil {
		return domain.OrderLine{}, false
	}

	price, err := strconv.ParseFloat(strings.ReplaceAll(get(idx.price), ",", ""), 64)
	if err != nil {
		return domain.OrderLine{}, false
	}

	date, ok := parseDate(get(idx.date))
	if !ok {
		return domain.OrderLine{}, false
	}

	return domain.OrderLine{
		InvoiceNo:   get(idx.invoice),
		StockCode:   get(idx.stock),
		Description: strings.TrimSpace(get(idx.description)),
		Quantity:    qty,
		InvoiceDate: date,
		UnitPrice:   price,
		CustomerID:  normalizeCustomerID(get(idx.customer)),
		Country:     get(idx.country),
	}, true
}

// parseDate tries the known InvoiceDate layouts.
func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeCustomerID strips the ".0" suffix spreadsheet tools add to
// numeric customer IDs.
func normalizeCustomerID(id string) string {
	return strings.TrimSuffix(id, ".0")
}

// normalizeHeader lowercases a header cell and removes separators.
func normalizeHeader(header string) string {
	header = strings.ToLower(strings.TrimSpace(header))
	header = strings.ReplaceAll(header, " ", "")
	header = strings.ReplaceAll(header, "_", "")
	header = strings.ReplaceAll(header, "-", "")
	return header
}

// stripBOM removes a UTF-8 byte order mark if the reader starts with one.
func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, _ := io.ReadFull(r, buf)
	if n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf[:n])), r)
}
