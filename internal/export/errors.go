package export

import "errors"

var (
	// ErrUnknownEncoding is returned for an encoding other than utf-8,
	// utf-8-bom or windows-1252.
	ErrUnknownEncoding = errors.New("export: unknown encoding")

	// ErrInvalidDelimiter is returned for a delimiter csv cannot use.
	ErrInvalidDelimiter = errors.New("export: invalid delimiter")

	// ErrUnknownFormat is returned by ParseFormat.
	ErrUnknownFormat = errors.New("export: unknown format")

	// ErrSheetNotFound is returned by ConvertSheet for a missing worksheet.
	ErrSheetNotFound = errors.New("export: sheet not found")
)
