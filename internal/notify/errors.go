package notify

import "errors"

var (
	// ErrNotificationDeliveryFailed wraps every sink failure. It is logged
	// by the Dispatcher and never returned to publishers.
	ErrNotificationDeliveryFailed = errors.New("notify: notification delivery failed")

	// ErrSinkUnavailable is returned by a sink whose backend is disconnected.
	ErrSinkUnavailable = errors.New("notify: sink unavailable")
)
