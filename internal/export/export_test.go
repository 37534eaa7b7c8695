package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/inventar-app/inventar-core/internal/infrastructure/config"
	"github.com/inventar-app/inventar-core/internal/inventory"
)

func ptr[T any](v T) *T { return &v }

func sampleRecords() []inventory.AssignmentRecord {
	from := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 9, 16, 30, 0, 0, time.UTC)
	return []inventory.AssignmentRecord{
		{
			AssignmentID: 2,
			InventoryNo:  "INV-0002",
			DeviceType:   "Phone",
			PersonName:   "Jürgen Müller",
			AssignedFrom: from.Add(24 * time.Hour),
		},
		{
			AssignmentID: 1,
			InventoryNo:  "INV-0001",
			DeviceType:   "Laptop",
			Location:     ptr("HQ"),
			PersonName:   "Ada Lovelace",
			AssignedFrom: from,
			AssignedTo:   &to,
			DamageNotes:  ptr("scratch; lid"),
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{"XLSX", FormatXLSX, false},
		{" xlsx ", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if tt.wantErr && !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("error = %v, want ErrUnknownFormat", err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if FormatXLSX.ContentType() == FormatCSV.ContentType() {
		t.Error("csv and xlsx share a content type")
	}
}

func TestWriteCSV_DefaultOptions(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords(), Options{}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	r := csv.NewReader(&buf)
	r.Comma = ';'
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(Header, ",") {
		t.Errorf("header = %v", rows[0])
	}

	open := rows[1]
	if open[3] != "" || open[6] != "" || open[7] != "" {
		t.Errorf("open assignment row has location/return/notes: %v", open)
	}
	closed := rows[2]
	if closed[5] != "2026-01-05 08:00:00" || closed[6] != "2026-01-09 16:30:00" {
		t.Errorf("timestamps = %q, %q", closed[5], closed[6])
	}
	if closed[7] != "scratch; lid" {
		t.Errorf("damage_notes = %q, delimiter inside a field must be quoted", closed[7])
	}
}

func TestWriteCSV_Location(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()[1:], Options{Delimiter: ',', Location: berlin}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if !strings.Contains(buf.String(), "2026-01-05 09:00:00") {
		t.Errorf("expected CET timestamp in\n%s", buf.String())
	}
}

func TestWriteCSV_Encodings(t *testing.T) {
	records := sampleRecords()[:1]

	t.Run("utf-8-bom", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteCSV(&buf, records, Options{Encoding: EncodingUTF8BOM}); err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}) {
			t.Errorf("missing BOM: % x", buf.Bytes()[:3])
		}
		if !strings.Contains(buf.String(), "Jürgen Müller") {
			t.Error("UTF-8 text not preserved")
		}
	})

	t.Run("windows-1252", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteCSV(&buf, records, Options{Encoding: EncodingWindows1252}); err != nil {
			t.Fatal(err)
		}
		want := []byte{'J', 0xFC, 'r', 'g', 'e', 'n'}
		if !bytes.Contains(buf.Bytes(), want) {
			t.Errorf("expected cp1252 bytes % x in output", want)
		}
		if bytes.Contains(buf.Bytes(), []byte("ü")) {
			t.Error("output still contains UTF-8 sequences")
		}
	})

	t.Run("windows-1252 unsupported rune", func(t *testing.T) {
		recs := []inventory.AssignmentRecord{{PersonName: "李", AssignedFrom: time.Unix(0, 0)}}
		var buf bytes.Buffer
		if err := WriteCSV(&buf, recs, Options{Encoding: EncodingWindows1252}); err != nil {
			t.Errorf("unrepresentable rune should be replaced, got error %v", err)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		err := WriteCSV(&bytes.Buffer{}, records, Options{Encoding: "ebcdic"})
		if !errors.Is(err, ErrUnknownEncoding) {
			t.Errorf("error = %v, want ErrUnknownEncoding", err)
		}
	})
}

func TestWriteCSV_InvalidDelimiter(t *testing.T) {
	for _, d := range []rune{'"', '\n', '\r'} {
		err := WriteCSV(&bytes.Buffer{}, nil, Options{Delimiter: d})
		if !errors.Is(err, ErrInvalidDelimiter) {
			t.Errorf("delimiter %q: error = %v, want ErrInvalidDelimiter", d, err)
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.ExportConfig{Delimiter: "\t", Encoding: "utf-8-bom", SheetName: "Ausgabe"}, nil)
	if opts.Delimiter != '\t' || opts.Encoding != EncodingUTF8BOM || opts.SheetName != "Ausgabe" {
		t.Errorf("OptionsFromConfig() = %+v", opts)
	}
	if opts.location() != time.UTC {
		t.Error("nil location should default to UTC")
	}
}

func TestFileName(t *testing.T) {
	got := FileName("gesamttabelle", FormatCSV, time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC))
	if got != "gesamttabelle_2026-10-14.csv" {
		t.Errorf("FileName() = %q", got)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatXLSX, sampleRecords(), Options{SheetName: "Ausgaben"}); err != nil {
		t.Fatalf("Write(xlsx) error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if name := f.GetSheetName(0); name != "Ausgaben" {
		t.Errorf("sheet name = %q", name)
	}
	rows, err := f.GetRows("Ausgaben")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][0] != "assignment_id" || rows[2][1] != "INV-0001" {
		t.Errorf("unexpected content: %v", rows)
	}

	styleID, err := f.GetCellStyle("Ausgaben", "A1")
	if err != nil {
		t.Fatal(err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatal(err)
	}
	if style.Font == nil || !style.Font.Bold {
		t.Error("header row is not bold")
	}
}

// workbook builds an XLSX with untrimmed headers and a short row.
func workbook(t *testing.T, sheet string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatal(err)
	}
	rows := [][]any{
		{" Inventarnummer ", "Gerätetyp  ", " Mitarbeiter"},
		{"INV-1", "Laptop", "Ada"},
		{"INV-2", "Phone"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestConvertSheet(t *testing.T) {
	var out bytes.Buffer
	n, err := ConvertSheet(workbook(t, "A3c"), "A3c", &out, Options{})
	if err != nil {
		t.Fatalf("ConvertSheet() error = %v", err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}

	want := "Inventarnummer;Gerätetyp;Mitarbeiter\nINV-1;Laptop;Ada\nINV-2;Phone;\n"
	if out.String() != want {
		t.Errorf("output =\n%q\nwant\n%q", out.String(), want)
	}
}

func TestConvertSheet_ActiveSheetDefault(t *testing.T) {
	var out bytes.Buffer
	if _, err := ConvertSheet(workbook(t, "Daten"), "", &out, Options{}); err != nil {
		t.Fatalf("ConvertSheet() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "Inventarnummer;") {
		t.Errorf("output = %q", out.String())
	}
}

func TestConvertSheet_Errors(t *testing.T) {
	if _, err := ConvertSheet(workbook(t, "A3c"), "missing", &bytes.Buffer{}, Options{}); !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("missing sheet: error = %v, want ErrSheetNotFound", err)
	}
	if _, err := ConvertSheet(strings.NewReader("not a zip"), "A3c", &bytes.Buffer{}, Options{}); err == nil {
		t.Error("garbage input should fail")
	}
}
