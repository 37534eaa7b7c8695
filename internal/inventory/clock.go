package inventory

import (
	"fmt"
	"time"
)

// Clock supplies the current time. Tests inject a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// storeTime normalises t to the precision every store keeps.
func storeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Bounds of a storable timestamp. SQLite compares timestamps as
// fixed-width TEXT, which orders correctly only for four-digit years.
const (
	minStoreYear = 1
	maxStoreYear = 9999
)

// checkStoreTime rejects t when its UTC year falls outside the storable range.
func checkStoreTime(field string, t time.Time) error {
	if y := t.UTC().Year(); y < minStoreYear || y > maxStoreYear {
		return fmt.Errorf("%w: %s year %d outside %d-%d", ErrInvalidInput, field, y, minStoreYear, maxStoreYear)
	}
	return nil
}
