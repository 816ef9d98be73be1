package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/pkg/contracts/domain"
)

func rawLine(invoice, desc string, qty int64, price float64, customer string, minute int) domain.OrderLine {
	return domain.OrderLine{
		InvoiceNo:   invoice,
		StockCode:   "85123A",
		Description: desc,
		Quantity:    qty,
		InvoiceDate: time.Date(2010, 12, 1, 8, minute, 0, 0, time.UTC),
		UnitPrice:   price,
		CustomerID:  customer,
		Country:     "United Kingdom",
	}
}

func TestClean_DropRules(t *testing.T) {
	tests := []struct {
		name  string
		line  domain.OrderLine
		count func(r domain.CleanReport) int
	}{
		{
			name:  "missing customer",
			line:  rawLine("536365", "PRODUCT", 6, 2.55, "", 0),
			count: func(r domain.CleanReport) int { return r.MissingCustomer },
		},
		{
			name:  "missing description",
			line:  rawLine("536365", "", 6, 2.55, "17850", 0),
			count: func(r domain.CleanReport) int { return r.MissingProduct },
		},
		{
			name:  "cancelled invoice",
			line:  rawLine("C536365", "PRODUCT", 6, 2.55, "17850", 0),
			count: func(r domain.CleanReport) int { return r.Cancellations },
		},
		{
			name:  "non-positive quantity",
			line:  rawLine("536365", "PRODUCT", -6, 2.55, "17850", 0),
			count: func(r domain.CleanReport) int { return r.NonPositiveQty },
		},
		{
			name:  "non-positive price",
			line:  rawLine("536365", "PRODUCT", 6, 0, "17850", 0),
			count: func(r domain.CleanReport) int { return r.NonPositivePrice },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := &ParsedFile{
				Path:      "test.csv",
				InputRows: 1,
				Lines:     []domain.OrderLine{tt.line},
			}

			cleaned, report := NewCleaner(nil).Clean(parsed)

			assert.Empty(t, cleaned)
			assert.Equal(t, 1, tt.count(report))
			assert.Zero(t, report.Kept)
			assert.True(t, report.Balanced())
		})
	}
}

func TestClean_RuleAttributionOrder(t *testing.T) {
	// A cancelled line with a missing customer counts as missing
	// customer; the first violated rule wins.
	line := rawLine("C536365", "PRODUCT", -6, 0, "", 0)
	parsed := &ParsedFile{InputRows: 1, Lines: []domain.OrderLine{line}}

	_, report := NewCleaner(nil).Clean(parsed)

	assert.Equal(t, 1, report.MissingCustomer)
	assert.Zero(t, report.Cancellations)
	assert.Zero(t, report.NonPositiveQty)
	assert.True(t, report.Balanced())
}

func TestClean_Duplicates(t *testing.T) {
	line := rawLine("536365", "PRODUCT", 6, 2.55, "17850", 0)
	parsed := &ParsedFile{InputRows: 3, Lines: []domain.OrderLine{line, line, line}}

	cleaned, report := NewCleaner(nil).Clean(parsed)

	assert.Len(t, cleaned, 1)
	assert.Equal(t, 2, report.DuplicateRows)
	assert.True(t, report.Balanced())
}

func TestClean_ComputesTotalAndSorts(t *testing.T) {
	later := rawLine("536370", "SECOND", 24, 3.75, "12583", 45)
	earlier := rawLine("536365", "FIRST", 6, 2.55, "17850", 26)
	parsed := &ParsedFile{InputRows: 2, Lines: []domain.OrderLine{later, earlier}}

	cleaned, report := NewCleaner(nil).Clean(parsed)

	require.Len(t, cleaned, 2)
	assert.Equal(t, "FIRST", cleaned[0].Description)
	assert.InDelta(t, 15.30, cleaned[0].TotalPrice, 1e-9)
	assert.InDelta(t, 90.00, cleaned[1].TotalPrice, 1e-9)
	assert.Equal(t, 2, report.Kept)
}

func TestClean_CarriesMalformedCount(t *testing.T) {
	parsed := &ParsedFile{
		InputRows: 3,
		Malformed: 2,
		Lines:     []domain.OrderLine{rawLine("536365", "PRODUCT", 6, 2.55, "17850", 0)},
	}

	cleaned, report := NewCleaner(nil).Clean(parsed)

	assert.Len(t, cleaned, 1)
	assert.Equal(t, 2, report.MalformedRows)
	assert.Equal(t, 3, report.InputRows)
	assert.True(t, report.Balanced())
}
