package export

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/inventar-app/inventar-core/internal/infrastructure/config"
)

// Supported CSV encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF8BOM     = "utf-8-bom"
	EncodingWindows1252 = "windows-1252"
)

// Defaults match the German spreadsheet convention the exports are
// opened with.
const (
	DefaultDelimiter = ';'
	DefaultSheetName = "Assignments"
	timeLayout       = "2006-01-02 15:04:05"
)

// Format is an export file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat parses "csv" or "xlsx" (case-insensitive). Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Options controls file output.
type Options struct {
	// Delimiter separates CSV fields. Zero means DefaultDelimiter.
	Delimiter rune

	// Encoding is one of the Encoding constants. Empty means utf-8.
	Encoding string

	// SheetName names the XLSX worksheet. Empty means DefaultSheetName.
	SheetName string

	// Location renders timestamps. Nil means UTC.
	Location *time.Location
}

// OptionsFromConfig builds Options from the export config section.
func OptionsFromConfig(cfg config.ExportConfig, loc *time.Location) Options {
	return Options{
		Delimiter: cfg.DelimiterRune(),
		Encoding:  cfg.Encoding,
		SheetName: cfg.SheetName,
		Location:  loc,
	}
}

func (o Options) delimiter() (rune, error) {
	d := o.Delimiter
	if d == 0 {
		d = DefaultDelimiter
	}
	if d == '"' || d == '\r' || d == '\n' || d == utf8.RuneError || !utf8.ValidRune(d) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelimiter, d)
	}
	return d, nil
}

func (o Options) sheetName() string {
	if o.SheetName == "" {
		return DefaultSheetName
	}
	return o.SheetName
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// encodingWriter wraps w so that UTF-8 text is written in the requested
// charset. The returned closer must be called to flush the transformer.
// Characters windows-1252 cannot represent are replaced.
func encodingWriter(w io.Writer, name string) (io.WriteCloser, error) {
	var enc *encoding.Encoder
	switch strings.ToLower(name) {
	case "", EncodingUTF8, "utf8":
		return nopCloser{w}, nil
	case EncodingUTF8BOM:
		enc = unicode.UTF8BOM.NewEncoder()
	case EncodingWindows1252, "cp1252":
		enc = encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return transform.NewWriter(w, enc), nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// FileName returns "<base>_<YYYY-MM-DD>.<format>".
func FileName(base string, f Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", base, now.Format("2006-01-02"), f)
}
