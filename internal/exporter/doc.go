// Package exporter writes order-line data out as spreadsheets.
//
// CSVWriter handles the cleaned dataset file the ETL produces and CSV
// downloads for the dashboard, with a UTF-8 BOM on downloads so Excel
// opens them correctly. ExcelWriter streams the same rows into an XLSX
// workbook via excelize.
package exporter
