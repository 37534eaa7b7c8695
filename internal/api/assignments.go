package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/inventar-app/inventar-core/internal/export"
	"github.com/inventar-app/inventar-core/internal/inventory"
)

// exportFileBase is the stem of export download names.
const exportFileBase = "assignments"

// IssueRequest is the body of POST /assignments.
type IssueRequest struct {
	DeviceID     int64      `json:"device_id"`
	PersonnelNo  int64      `json:"personnel_no"`
	AssignedFrom *time.Time `json:"assigned_from,omitempty"`
}

// ReturnRequest is the optional body of POST /assignments/{id}/return.
type ReturnRequest struct {
	DamageNotes *string `json:"damage_notes"`
}

// handleIssueDevice assigns a device to a person.
func (s *Server) handleIssueDevice(w http.ResponseWriter, r *http.Request) {
	var req IssueRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	res, err := s.inventory.IssueDevice(r.Context(), req.DeviceID, req.PersonnelNo, req.AssignedFrom)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// handleReturnDevice closes an open assignment. The body is optional.
func (s *Server) handleReturnDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "assignment id must be a positive integer")
		return
	}

	var req ReturnRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	res, err := s.inventory.ReturnDevice(r.Context(), id, req.DamageNotes)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleListActiveAssignments returns all open assignments, newest first.
func (s *Server) handleListActiveAssignments(w http.ResponseWriter, r *http.Request) {
	active, err := s.inventory.ListActiveAssignments(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assignments": active, "count": len(active)})
}

// handleExportAssignments streams the assignment history as CSV, XLSX
// or JSON.
//
// Query parameters:
//   - format: csv (default), xlsx or json
//   - personnel_no, device_id: filters
//   - from, until: assigned_from range (RFC 3339 or YYYY-MM-DD)
//   - open_only: only unreturned assignments
//   - limit: maximum rows, at most inventory.MaxExportLimit
func (s *Server) handleExportAssignments(w http.ResponseWriter, r *http.Request) {
	filter, err := s.exportFilter(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	formatParam := r.URL.Query().Get("format")
	asJSON := formatParam == "json"
	var format export.Format
	if !asJSON {
		if format, err = export.ParseFormat(formatParam); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
	}

	records, err := s.inventory.ExportAssignments(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if asJSON {
		writeJSON(w, http.StatusOK, map[string]any{"assignments": records, "count": len(records)})
		return
	}

	// Render fully before writing headers so a failure still yields a
	// proper error response.
	var buf bytes.Buffer
	if err := export.Write(&buf, format, records, s.exportOpts); err != nil {
		s.logger.Error("rendering export failed", "format", format, "error", err, "request_id", requestID(r))
		writeInternalError(w, "export failed")
		return
	}

	name := export.FileName(exportFileBase, format, s.now().In(s.location()))
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write(buf.Bytes())
}

func (s *Server) exportFilter(r *http.Request) (inventory.ExportFilter, error) {
	var (
		f   inventory.ExportFilter
		err error
	)
	loc := s.location()

	if f.PersonnelNo, err = queryInt64(r, "personnel_no"); err != nil {
		return f, err
	}
	if f.DeviceID, err = queryInt64(r, "device_id"); err != nil {
		return f, err
	}
	if f.From, err = queryTime(r, "from", loc); err != nil {
		return f, err
	}
	if f.Until, err = queryTime(r, "until", loc); err != nil {
		return f, err
	}
	if f.OpenOnly, err = queryBool(r, "open_only"); err != nil {
		return f, err
	}
	limit, err := queryInt64(r, "limit")
	if err != nil {
		return f, err
	}
	if limit != nil {
		// Clamp before narrowing to int; the Manager rejects anything
		// outside 0..MaxExportLimit.
		switch {
		case *limit < 0:
			f.Limit = -1
		case *limit > inventory.MaxExportLimit:
			f.Limit = inventory.MaxExportLimit + 1
		default:
			f.Limit = int(*limit)
		}
	}
	return f, nil
}

func (s *Server) location() *time.Location {
	if s.exportOpts.Location == nil {
		return time.UTC
	}
	return s.exportOpts.Location
}
