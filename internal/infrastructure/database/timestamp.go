package database

import (
	"fmt"
	"time"
)

// TimeLayout is the storage format for SQLite timestamp columns.
// It matches strftime('%Y-%m-%dT%H:%M:%fZ'), the schema's column default.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// fallbackLayouts are accepted when scanning values written by other tools.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

// FormatTime renders t in TimeLayout (UTC, millisecond precision).
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Time is a nullable timestamp that scans from either driver.
//
// PostgreSQL returns time.Time; SQLite TEXT columns return string or []byte.
type Time struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v.UTC(), true
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("database: cannot scan %T into Time", src)
	}
}

// Ptr returns a pointer to the time, or nil when the value is NULL.
func (t Time) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (t *Time) parse(s string) error {
	parsed, err := time.Parse(TimeLayout, s)
	if err != nil {
		for _, layout := range fallbackLayouts {
			if parsed, err = time.Parse(layout, s); err == nil {
				break
			}
		}
	}
	if err != nil {
		return fmt.Errorf("database: parsing timestamp %q: %w", s, err)
	}
	t.Time, t.Valid = parsed.UTC(), true
	return nil
}
