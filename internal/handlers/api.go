package handlers

import (
	"context"
	"net/http"

	"github.com/echo-project/crisis-engine/internal/services"
)

// ProcessRunner triggers a detection run over unprocessed reports
type ProcessRunner interface {
	ProcessReports(ctx context.Context) error
}

// APIHandler handles the incident and alert API endpoints
type APIHandler struct {
	incidents *services.IncidentService
	lifecycle *services.LifecycleService
	processor ProcessRunner
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(incidents *services.IncidentService, lifecycle *services.LifecycleService, processor ProcessRunner) *APIHandler {
	return &APIHandler{
		incidents: incidents,
		lifecycle: lifecycle,
		processor: processor,
	}
}

// SetupRoutes sets up all API routes
func (h *APIHandler) SetupRoutes(mux *http.ServeMux) {
	// Incidents
	mux.HandleFunc("/api/incidents", h.handleIncidents)
	mux.HandleFunc("/api/incidents/", h.handleIncidentByID)

	// Alerts
	mux.HandleFunc("/api/alerts", h.handleAlerts)
	mux.HandleFunc("/api/alerts/", h.handleAlertByID)

	// Detection trigger
	mux.HandleFunc("/api/process", h.handleProcess)
}
