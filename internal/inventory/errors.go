package inventory

import (
	"errors"
	"fmt"
)

// Domain errors for the inventory package.
//
// Every error returned by Manager and SQLRepository wraps exactly one of
// these, so callers can branch with errors.Is():
//
//	if errors.Is(err, inventory.ErrAlreadyAssigned) {
//	    // 409
//	}
var (
	// ErrDuplicateInventoryNumber is returned when a device is registered
	// with an inventory number that is already in use.
	ErrDuplicateInventoryNumber = errors.New("inventory: duplicate inventory number")

	// ErrAlreadyAssigned is returned when issuing a device that has an open assignment.
	ErrAlreadyAssigned = errors.New("inventory: device already assigned")

	// ErrNotFoundOrAlreadyReturned is returned when returning an assignment
	// that does not exist or is already closed.
	ErrNotFoundOrAlreadyReturned = errors.New("inventory: assignment not found or already returned")

	// ErrInvalidDateRange is returned when a return would end before the
	// assignment started.
	ErrInvalidDateRange = errors.New("inventory: return precedes issue")

	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = errors.New("inventory: device not found")

	// ErrPersonNotFound is returned when a personnel number does not exist.
	ErrPersonNotFound = errors.New("inventory: person not found")

	// ErrInvalidReference is returned when a device type or location does not exist.
	ErrInvalidReference = errors.New("inventory: invalid reference")

	// ErrInvalidDevice is returned when device registration input fails validation.
	ErrInvalidDevice = errors.New("inventory: invalid device")

	// ErrInvalidInput is returned when issue/return/filter input fails validation.
	ErrInvalidInput = errors.New("inventory: invalid input")

	// ErrUnavailable wraps infrastructure failures (connectivity, timeouts,
	// driver errors) so they are distinguishable from domain errors.
	ErrUnavailable = errors.New("inventory: store unavailable")
)

// unavailable wraps an infrastructure error with ErrUnavailable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
