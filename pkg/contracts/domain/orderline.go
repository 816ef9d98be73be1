package domain

import (
	"strconv"
	"strings"
	"time"
)

// OrderLine is a single transaction line from the retail sales log.
// One invoice usually spans several lines, one per product.
type OrderLine struct {
	InvoiceNo   string    `json:"invoice_no" csv:"InvoiceNo"`
	StockCode   string    `json:"stock_code" csv:"StockCode"`
	Description string    `json:"description" csv:"Description"`
	Quantity    int64     `json:"quantity" csv:"Quantity"`
	InvoiceDate time.Time `json:"invoice_date" csv:"InvoiceDate"`
	UnitPrice   float64   `json:"unit_price" csv:"UnitPrice"`
	CustomerID  string    `json:"customer_id" csv:"CustomerID"`
	Country     string    `json:"country" csv:"Country"`
	TotalPrice  float64   `json:"total_price" csv:"TotalPrice"`
}

// CancelPrefix marks cancelled invoices in the raw log.
const CancelPrefix = "C"

// IsCancellation reports whether the line belongs to a cancelled invoice.
func (l OrderLine) IsCancellation() bool {
	return strings.HasPrefix(l.InvoiceNo, CancelPrefix)
}

// Key returns a deduplication key covering every raw column.
func (l OrderLine) Key() string {
	return strings.Join([]string{
		l.InvoiceNo,
		l.StockCode,
		l.Description,
		strconv.FormatInt(l.Quantity, 10),
		l.InvoiceDate.Format(time.RFC3339),
		strconv.FormatFloat(l.UnitPrice, 'f', -1, 64),
		l.CustomerID,
		l.Country,
	}, "|")
}

// CSVHeader is the column order used for the cleaned dataset and exports.
var CSVHeader = []string{
	"InvoiceNo", "StockCode", "Description", "Quantity",
	"InvoiceDate", "UnitPrice", "CustomerID", "Country", "TotalPrice",
}

// CSVDateFormat is the canonical timestamp layout in the cleaned dataset.
const CSVDateFormat = "2006-01-02 15:04:05"

// CSVRecord renders the line in CSVHeader column order.
func (l OrderLine) CSVRecord() []string {
	return []string{
		l.InvoiceNo,
		l.StockCode,
		l.Description,
		strconv.FormatInt(l.Quantity, 10),
		l.InvoiceDate.Format(CSVDateFormat),
		strconv.FormatFloat(l.UnitPrice, 'f', 2, 64),
		l.CustomerID,
		l.Country,
		strconv.FormatFloat(l.TotalPrice, 'f', 2, 64),
	}
}
