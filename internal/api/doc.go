// Package api implements the HTTP REST API and WebSocket server for Inventar Core.
//
// This package provides:
//   - REST endpoints for devices, assignments and reference data
//   - CSV/XLSX export of the assignment history
//   - WebSocket hub that forwards inventory events to subscribed clients
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//   - TLS support for production deployments
//
// # Errors
//
// Domain errors map to fixed status codes and messages:
//
//	ErrDuplicateInventoryNumber   409 duplicate_inventory_number
//	ErrAlreadyAssigned            409 already_assigned
//	ErrNotFoundOrAlreadyReturned  404 not_found_or_already_returned
//	ErrInvalidDateRange           422 invalid_date_range
//	ErrDeviceNotFound             404 device_not_found
//	ErrPersonNotFound             404 person_not_found
//	ErrInvalidReference           422 invalid_reference
//	ErrInvalidDevice/Input        400 validation_error
//	ErrUnavailable                503 unavailable
//
// Store error text never reaches the response body.
//
// # Graceful Degradation
//
// The server runs without MQTT, Redis or InfluxDB. Health reports those
// components as degraded; only a failed database makes it unhealthy.
package api
