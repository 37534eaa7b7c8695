package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each component check on /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Post("/", s.handleCreateDevice)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Get("/status", s.handleGetDeviceStatus)
			})
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", s.handleIssueDevice)
			r.Get("/active", s.handleListActiveAssignments)
			r.Get("/export", s.handleExportAssignments)
			r.Post("/{id}/return", s.handleReturnDevice)
		})

		r.Get("/devicetypes", s.handleListDeviceTypes)
		r.Get("/locations", s.handleListLocations)
		r.Get("/persons", s.handleListPersons)

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth reports the database and optional components.
// A failed database gives 503; failed components give "degraded".
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	components := make(map[string]string, len(s.components)+1)
	status := "ok"
	code := http.StatusOK

	check := func(c HealthChecker) string {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := c.HealthCheck(ctx); err != nil {
			return "error"
		}
		return "ok"
	}

	if s.database != nil {
		components["database"] = check(s.database)
		if components["database"] != "ok" {
			status = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}
	for name, c := range s.components {
		if c == nil {
			components[name] = "disabled"
			continue
		}
		components[name] = check(c)
		if components[name] != "ok" && status == "ok" {
			status = "degraded"
		}
	}

	writeJSON(w, code, map[string]any{
		"status":     status,
		"version":    s.version,
		"components": components,
	})
}
