package api

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/inventar-app/inventar-core/internal/export"
	"github.com/inventar-app/inventar-core/internal/inventory"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeNotFound           = "not_found"
	ErrCodeValidation         = "validation_error"
	ErrCodeDuplicateInventory = "duplicate_inventory_number"
	ErrCodeAlreadyAssigned    = "already_assigned"
	ErrCodeNotReturnable      = "not_found_or_already_returned"
	ErrCodeInvalidDateRange   = "invalid_date_range"
	ErrCodeDeviceNotFound     = "device_not_found"
	ErrCodePersonNotFound     = "person_not_found"
	ErrCodeInvalidReference   = "invalid_reference"
	ErrCodeUnavailable        = "unavailable"
	ErrCodeInternal           = "internal_error"
)

// errorMapping is checked in order; the first match wins.
var errorMapping = []struct {
	target error
	resp   Error
}{
	{inventory.ErrDuplicateInventoryNumber, Error{http.StatusConflict, ErrCodeDuplicateInventory, "inventory number already exists"}},
	{inventory.ErrAlreadyAssigned, Error{http.StatusConflict, ErrCodeAlreadyAssigned, "device is already assigned"}},
	{inventory.ErrNotFoundOrAlreadyReturned, Error{http.StatusNotFound, ErrCodeNotReturnable, "assignment not found or already returned"}},
	{inventory.ErrInvalidDateRange, Error{http.StatusUnprocessableEntity, ErrCodeInvalidDateRange, "return time precedes issue time"}},
	{inventory.ErrDeviceNotFound, Error{http.StatusNotFound, ErrCodeDeviceNotFound, "device not found"}},
	{inventory.ErrPersonNotFound, Error{http.StatusNotFound, ErrCodePersonNotFound, "person not found"}},
	{inventory.ErrInvalidReference, Error{http.StatusUnprocessableEntity, ErrCodeInvalidReference, "device type or location does not exist"}},
	{inventory.ErrInvalidDevice, Error{http.StatusBadRequest, ErrCodeValidation, "invalid device data"}},
	{inventory.ErrInvalidInput, Error{http.StatusBadRequest, ErrCodeValidation, "invalid input"}},
	{export.ErrUnknownFormat, Error{http.StatusBadRequest, ErrCodeValidation, "unknown export format"}},
	{inventory.ErrUnavailable, Error{http.StatusServiceUnavailable, ErrCodeUnavailable, "service temporarily unavailable"}},
}

// errorResponse maps err to its fixed response.
func errorResponse(err error) Error {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return m.resp
		}
	}
	return Error{http.StatusInternalServerError, ErrCodeInternal, "internal server error"}
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeDomainError writes the fixed response for err and logs
// infrastructure failures.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse(err)
	if resp.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestID(r),
			"error", err,
		)
	}
	writeJSON(w, resp.Status, resp)
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}
