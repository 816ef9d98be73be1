package analytics

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"time"

	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// Dataset is the cleaned order-line table held in memory by the web
// server. It is immutable after NewDataset returns; a reload builds a
// fresh Dataset and swaps the pointer.
type Dataset struct {
	lines    []domain.OrderLine
	bounds   Bounds
	loadedAt time.Time

	countries []string
	products  []string

	// Segment membership, computed once over the full dataset.
	firstPurchase map[string]time.Time
	repeat        map[string]struct{}
	highValue     map[string]struct{}
}

// NewDataset builds a dataset from cleaned lines. The lines are assumed
// to be date-sorted, as the ETL pipeline writes them; segment sets and
// bounds are derived here.
func NewDataset(lines []domain.OrderLine, highValueCount int) *Dataset {
	d := &Dataset{
		lines:         lines,
		loadedAt:      time.Now(),
		firstPurchase: make(map[string]time.Time),
		repeat:        make(map[string]struct{}),
		highValue:     make(map[string]struct{}),
	}

	countrySet := make(map[string]struct{})
	productSet := make(map[string]struct{})
	invoices := make(map[string]map[string]struct{}) // customer -> invoice set
	spend := make(map[string]float64)

	for i, line := range lines {
		if i == 0 {
			d.bounds = Bounds{
				MinDate:  line.InvoiceDate,
				MaxDate:  line.InvoiceDate,
				MinQty:   line.Quantity,
				MaxQty:   line.Quantity,
				MinPrice: line.UnitPrice,
				MaxPrice: line.UnitPrice,
			}
		} else {
			if line.InvoiceDate.Before(d.bounds.MinDate) {
				d.bounds.MinDate = line.InvoiceDate
			}
			if line.InvoiceDate.After(d.bounds.MaxDate) {
				d.bounds.MaxDate = line.InvoiceDate
			}
			if line.Quantity < d.bounds.MinQty {
				d.bounds.MinQty = line.Quantity
			}
			if line.Quantity > d.bounds.MaxQty {
				d.bounds.MaxQty = line.Quantity
			}
			if line.UnitPrice < d.bounds.MinPrice {
				d.bounds.MinPrice = line.UnitPrice
			}
			if line.UnitPrice > d.bounds.MaxPrice {
				d.bounds.MaxPrice = line.UnitPrice
			}
		}

		if line.Country != "" {
			countrySet[line.Country] = struct{}{}
		}
		if line.Description != "" {
			productSet[line.Description] = struct{}{}
		}

		first, seen := d.firstPurchase[line.CustomerID]
		if !seen || line.InvoiceDate.Before(first) {
			d.firstPurchase[line.CustomerID] = line.InvoiceDate
		}

		set := invoices[line.CustomerID]
		if set == nil {
			set = make(map[string]struct{})
			invoices[line.CustomerID] = set
		}
		set[line.InvoiceNo] = struct{}{}

		spend[line.CustomerID] += line.TotalPrice
	}

	for customer, set := range invoices {
		if len(set) > 1 {
			d.repeat[customer] = struct{}{}
		}
	}

	if highValueCount > 0 {
		type customerSpend struct {
			id    string
			total float64
		}
		ranked := make([]customerSpend, 0, len(spend))
		for id, total := range spend {
			ranked = append(ranked, customerSpend{id, total})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].total != ranked[j].total {
				return ranked[i].total > ranked[j].total
			}
			return ranked[i].id < ranked[j].id
		})
		if len(ranked) > highValueCount {
			ranked = ranked[:highValueCount]
		}
		for _, cs := range ranked {
			d.highValue[cs.id] = struct{}{}
		}
	}

	d.countries = sortedKeys(countrySet)
	d.products = sortedKeys(productSet)

	return d
}

// LoadCSV reads a cleaned order-line file and builds a dataset from it.
// The file must carry the canonical cleaned header; anything else means
// the ETL step has not been run on it.
func LoadCSV(path string, highValueCount int, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open cleaned file %s", path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)

	header, err := reader.Read()
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read header of %s", path), err)
	}
	if len(header) < len(domain.CSVHeader) {
		return nil, errors.NewParsingError(fmt.Sprintf("%s is not a cleaned order-line file", path), nil)
	}

	var lines []domain.OrderLine
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("failed to read %s", path), err)
		}
		rowNum++

		line, err := lineFromRecord(record)
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("bad row %d in %s", rowNum, path), err)
		}
		lines = append(lines, line)
	}

	d := NewDataset(lines, highValueCount)

	logger.Info("dataset loaded",
		slog.String("path", path),
		slog.Int("rows", len(lines)),
		slog.Int("countries", len(d.countries)),
		slog.Int("products", len(d.products)))

	return d, nil
}

// lineFromRecord parses one cleaned CSV record. Cleaned files are our
// own output, so parse failures are errors rather than skipped rows.
func lineFromRecord(record []string) (domain.OrderLine, error) {
	if len(record) < len(domain.CSVHeader) {
		return domain.OrderLine{}, fmt.Errorf("expected %d fields, got %d", len(domain.CSVHeader), len(record))
	}

	qty, err := strconv.ParseInt(record[3], 10, 64)
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("quantity: %w", err)
	}
	date, err := time.Parse(domain.CSVDateFormat, record[4])
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("invoice date: %w", err)
	}
	price, err := strconv.ParseFloat(record[5], 64)
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("unit price: %w", err)
	}
	total, err := strconv.ParseFloat(record[8], 64)
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("total price: %w", err)
	}

	return domain.OrderLine{
		InvoiceNo:   record[0],
		StockCode:   record[1],
		Description: record[2],
		Quantity:    qty,
		InvoiceDate: date,
		UnitPrice:   price,
		CustomerID:  record[6],
		Country:     record[7],
		TotalPrice:  total,
	}, nil
}

// Len returns the number of order lines in the dataset.
func (d *Dataset) Len() int { return len(d.lines) }

// LoadedAt returns when the dataset was built.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Bounds returns the value ranges of the full dataset.
func (d *Dataset) Bounds() Bounds { return d.bounds }

// Countries returns the sorted distinct country names.
func (d *Dataset) Countries() []string { return d.countries }

// Products returns the sorted distinct product descriptions.
func (d *Dataset) Products() []string { return d.products }

// Summary returns the widget-setup payload for the dashboard.
func (d *Dataset) Summary() Summary {
	return Summary{
		Rows:      len(d.lines),
		Bounds:    d.bounds,
		Countries: d.countries,
		Products:  d.products,
		LoadedAt:  d.loadedAt,
	}
}

// Line returns the order line at index i.
func (d *Dataset) Line(i int) domain.OrderLine { return d.lines[i] }

// inSegment reports whether the line at index i belongs to the segment.
// New means the line sits at its customer's first purchase timestamp.
func (d *Dataset) inSegment(i int, segment Segment) bool {
	line := d.lines[i]
	switch segment {
	case SegmentNew:
		return line.InvoiceDate.Equal(d.firstPurchase[line.CustomerID])
	case SegmentRepeat:
		_, ok := d.repeat[line.CustomerID]
		return ok
	case SegmentHighValue:
		_, ok := d.highValue[line.CustomerID]
		return ok
	default:
		return true
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
