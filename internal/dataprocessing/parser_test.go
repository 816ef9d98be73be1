package dataprocessing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const rawHeader = "InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFile_CSV(t *testing.T) {
	path := writeCSV(t, rawHeader+"\n"+
		"536365,85123A,WHITE HANGING HEART,6,12/1/2010 8:26,2.55,17850,United Kingdom\n"+
		"536365,71053,WHITE METAL LANTERN,6,12/1/2010 8:26,3.39,17850,United Kingdom\n")

	parsed, err := NewParser(nil).ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, parsed.InputRows)
	assert.Zero(t, parsed.Malformed)
	require.Len(t, parsed.Lines, 2)

	first := parsed.Lines[0]
	assert.Equal(t, "536365", first.InvoiceNo)
	assert.Equal(t, "85123A", first.StockCode)
	assert.Equal(t, int64(6), first.Quantity)
	assert.InDelta(t, 2.55, first.UnitPrice, 1e-9)
	assert.Equal(t, "17850", first.CustomerID)
	assert.Equal(t, 2010, first.InvoiceDate.Year())
	assert.Equal(t, 8, first.InvoiceDate.Hour())
}

func TestParseFile_HeaderSynonymsAndOrder(t *testing.T) {
	// Different column names and order than the canonical dump.
	path := writeCSV(t, "Invoice Number,Order Date,Quantity,Unit Price,Customer,Country,Product Name,SKU\n"+
		"536370,2010-12-01 08:45:00,24,3.75,12583,France,ALARM CLOCK BAKELIKE,22728\n")

	parsed, err := NewParser(nil).ParseFile(path)
	require.NoError(t, err)
	require.Len(t, parsed.Lines, 1)

	line := parsed.Lines[0]
	assert.Equal(t, "536370", line.InvoiceNo)
	assert.Equal(t, "22728", line.StockCode)
	assert.Equal(t, "ALARM CLOCK BAKELIKE", line.Description)
	assert.Equal(t, "France", line.Country)
}

func TestParseFile_MalformedRowsCounted(t *testing.T) {
	path := writeCSV(t, rawHeader+"\n"+
		"536365,85123A,OK LINE,6,12/1/2010 8:26,2.55,17850,United Kingdom\n"+
		"536366,85123B,BAD QTY,six,12/1/2010 8:26,2.55,17850,United Kingdom\n"+
		"536367,85123C,BAD DATE,6,someday,2.55,17850,United Kingdom\n"+
		"536368,85123D,BAD PRICE,6,12/1/2010 8:26,cheap,17850,United Kingdom\n")

	parsed, err := NewParser(nil).ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, 4, parsed.InputRows)
	assert.Equal(t, 3, parsed.Malformed)
	assert.Len(t, parsed.Lines, 1)
}

func TestParseFile_BOMAndThousandSeparators(t *testing.T) {
	path := writeCSV(t, "\xEF\xBB\xBF"+rawHeader+"\n"+
		`536365,85123A,BULK ORDER,"1,200",12/1/2010 8:26,"2,550.00",17850.0,United Kingdom`+"\n")

	parsed, err := NewParser(nil).ParseFile(path)
	require.NoError(t, err)
	require.Len(t, parsed.Lines, 1)

	line := parsed.Lines[0]
	assert.Equal(t, int64(1200), line.Quantity)
	assert.InDelta(t, 2550.0, line.UnitPrice, 1e-9)
	// Spreadsheet float artifact is stripped.
	assert.Equal(t, "17850", line.CustomerID)
}

func TestParseFile_MissingRequiredColumn(t *testing.T) {
	path := writeCSV(t, "InvoiceNo,StockCode,Description,Quantity,InvoiceDate,CustomerID,Country\n"+
		"536365,85123A,NO PRICE,6,12/1/2010 8:26,17850,United Kingdom\n")

	_, err := NewParser(nil).ParseFile(path)
	assert.Error(t, err)
}

func TestParseFile_EmptyFile(t *testing.T) {
	_, err := NewParser(nil).ParseFile(writeCSV(t, ""))
	assert.Error(t, err)
}

func TestParseFile_MissingFile(t *testing.T) {
	_, err := NewParser(nil).ParseFile(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestParseFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Online Retail"))
	rows := [][]interface{}{
		{"InvoiceNo", "StockCode", "Description", "Quantity", "InvoiceDate", "UnitPrice", "CustomerID", "Country"},
		{"536365", "85123A", "WHITE HANGING HEART", "6", "12/1/2010 8:26", "2.55", "17850", "United Kingdom"},
		{"536370", "22728", "ALARM CLOCK BAKELIKE", "24", "12/1/2010 8:45", "3.75", "12583", "France"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Online Retail", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	parsed, err := NewParser(nil).ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, parsed.InputRows)
	require.Len(t, parsed.Lines, 2)
	assert.Equal(t, "France", parsed.Lines[1].Country)
}

func TestParseFile_XLSXWithoutTransactionSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.xlsx")

	f := excelize.NewFile()
	row := []interface{}{"Totally", "Unrelated", "Data"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &row))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := NewParser(nil).ParseFile(path)
	assert.Error(t, err)
}
