package api

import (
	"time"

	"github.com/echo-project/crisis-engine/internal/database"
)

// ========== Alert Types ==========

// AcknowledgeAlertRequest is the request body for POST /api/alerts/:id/acknowledge.
type AcknowledgeAlertRequest struct {
	UserID string `json:"user_id" validate:"required,min=1,max=64"`
}

// ResolveAlertRequest is the request body for POST /api/alerts/:id/resolve.
type ResolveAlertRequest struct {
	ResolutionNotes string `json:"resolution_notes" validate:"required,min=1"`
}

// AlertListItem is a compact list representation of an alert.
// It omits the contact list to reduce response size.
type AlertListItem struct {
	ID         string               `json:"alert_id"`
	IncidentID string               `json:"incident_id"`
	Severity   int                  `json:"severity"`
	Summary    string               `json:"summary"`
	Status     database.AlertStatus `json:"status"`
	CreatedAt  time.Time            `json:"created_at"`
}

// ========== Incident Types ==========

// CreateManualIncidentRequest is the request body for POST /api/incidents.
type CreateManualIncidentRequest struct {
	ReportIDs []string `json:"report_ids" validate:"required,min=1,dive,min=1"`
}

// CreateIncidentResponse is returned for a created incident.
type CreateIncidentResponse struct {
	IncidentID string `json:"incident_id"`
}

// IncidentListItem is a compact list representation of an incident.
// It omits the member report list to reduce response size.
type IncidentListItem struct {
	ID            string                      `json:"incident_id"`
	Summary       string                      `json:"summary"`
	Severity      int                         `json:"severity"`
	SeverityLabel string                      `json:"severity_label"`
	Categories    []string                    `json:"categories"`
	Status        database.IncidentStatus     `json:"status"`
	SourceType    database.IncidentSourceType `json:"source_type"`
	ReportCount   int                         `json:"report_count"`
	CreatedAt     time.Time                   `json:"created_at"`
}

// ========== List Envelopes ==========

// ListResponse wraps a paginated collection.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
}
