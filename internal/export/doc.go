// Package export renders assignment history as CSV or XLSX and converts
// XLSX worksheets to CSV.
//
// CSV output uses a configurable single-character delimiter (default ';')
// and one of three encodings. utf-8-bom and windows-1252 help older
// spreadsheet software detect the charset. XLSX output has a bold header row.
package export
