package api

import (
	"net/http"
	"strconv"

	"github.com/inventar-app/inventar-core/internal/inventory"
)

// handleListDevices returns all devices with derived status.
//
// Query parameters:
//   - status: Free or Assigned
//   - devicetype_id: filter by device type
//   - location_id: filter by location
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	filter := inventory.DeviceFilter{
		Status: inventory.Status(r.URL.Query().Get("status")),
	}

	var err error
	if filter.DeviceTypeID, err = queryInt64(r, "devicetype_id"); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if filter.LocationID, err = queryInt64(r, "location_id"); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	devices, err := s.inventory.ListDevices(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleCreateDevice registers a new device.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req inventory.NewDevice
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	id, err := s.inventory.RegisterDevice(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/devices/"+strconv.FormatInt(id, 10))

	device, err := s.inventory.GetDevice(r.Context(), id)
	if err != nil {
		// Committed but not readable back; the id is still valid.
		writeJSON(w, http.StatusCreated, map[string]any{"id": id})
		return
	}
	writeJSON(w, http.StatusCreated, device)
}

// handleGetDevice returns one device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "device id must be a positive integer")
		return
	}

	device, err := s.inventory.GetDevice(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

// handleGetDeviceStatus returns the derived status and, if assigned,
// the open assignment.
func (s *Server) handleGetDeviceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "device id must be a positive integer")
		return
	}

	current, err := s.inventory.CurrentAssignment(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp := map[string]any{
		"device_id": id,
		"status":    inventory.StatusFree,
	}
	if current != nil {
		resp["status"] = inventory.StatusAssigned
		resp["assignment"] = current
	}
	writeJSON(w, http.StatusOK, resp)
}
