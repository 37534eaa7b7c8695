package influxdb

import "errors"

var (
	// ErrDisabled is returned by Connect when influxdb.enabled is false.
	ErrDisabled = errors.New("influxdb: event recording disabled")

	// ErrUnreachable is returned by Connect when the server does not
	// answer the initial ping or reports itself unhealthy.
	ErrUnreachable = errors.New("influxdb: server unreachable")

	// ErrClosed is returned by HealthCheck once Close has been called.
	ErrClosed = errors.New("influxdb: client closed")
)
