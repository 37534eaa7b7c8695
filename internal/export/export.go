package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/inventar-app/inventar-core/internal/inventory"
)

// Header is the column order of every assignment export.
var Header = []string{
	"assignment_id",
	"inventory_no",
	"devicetype",
	"location",
	"person_name",
	"assigned_from",
	"assigned_to",
	"damage_notes",
}

// Rows renders records as string rows in Header order. Timestamps use
// loc; absent values are empty strings.
func Rows(records []inventory.AssignmentRecord, loc *time.Location) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.FormatInt(r.AssignmentID, 10),
			r.InventoryNo,
			r.DeviceType,
			deref(r.Location),
			r.PersonName,
			r.AssignedFrom.In(loc).Format(timeLayout),
			formatTime(r.AssignedTo, loc),
			deref(r.DamageNotes),
		})
	}
	return rows
}

// Write renders records in the given format.
func Write(w io.Writer, f Format, records []inventory.AssignmentRecord, opts Options) error {
	switch f {
	case FormatCSV, "":
		return WriteCSV(w, records, opts)
	case FormatXLSX:
		return WriteXLSX(w, records, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// WriteCSV writes the header and one line per record.
func WriteCSV(w io.Writer, records []inventory.AssignmentRecord, opts Options) error {
	return WriteTable(w, Header, Rows(records, opts.location()), opts)
}

// WriteTable writes header and rows as CSV using the delimiter and
// encoding from opts. A nil header writes rows only.
func WriteTable(w io.Writer, header []string, rows [][]string, opts Options) error {
	delim, err := opts.delimiter()
	if err != nil {
		return err
	}
	out, err := encodingWriter(w, opts.Encoding)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(out)
	cw.Comma = delim
	if header != nil {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("flushing encoder: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format(timeLayout)
}
