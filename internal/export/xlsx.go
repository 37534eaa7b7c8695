package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/inventar-app/inventar-core/internal/inventory"
)

// defaultSheet is the sheet excelize creates in a new workbook.
const defaultSheet = "Sheet1"

// WriteXLSX writes records as a workbook with one sheet and a bold
// header row.
func WriteXLSX(w io.Writer, records []inventory.AssignmentRecord, opts Options) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // In-memory workbook

	sheet := opts.sheetName()
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("naming sheet: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	loc := opts.location()
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			r.AssignmentID,
			r.InventoryNo,
			r.DeviceType,
			deref(r.Location),
			r.PersonName,
			r.AssignedFrom.In(loc).Format(timeLayout),
			formatTime(r.AssignedTo, loc),
			deref(r.DamageNotes),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// ConvertSheet reads one worksheet of an XLSX workbook and writes it as
// CSV. The first row is the header; its cells are trimmed. Short rows
// are padded to the header width. An empty sheet name selects the
// active sheet.
//
// Returns the number of data rows written.
func ConvertSheet(r io.Reader, sheet string, w io.Writer, opts Options) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only workbook

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return 0, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return 0, WriteTable(w, nil, nil, opts)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	data := rows[1:]
	for i, row := range data {
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			data[i] = padded
		}
	}

	if err := WriteTable(w, header, data, opts); err != nil {
		return 0, err
	}
	return len(data), nil
}
