package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/echo-project/crisis-engine/internal/api"
	"github.com/echo-project/crisis-engine/internal/database"
	"github.com/echo-project/crisis-engine/internal/middleware"
	"gorm.io/gorm"
)

// handleAlerts handles GET /api/alerts
func (h *APIHandler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	status, ok := parseAlertStatus(r.URL.Query().Get("status"))
	if !ok {
		api.RespondError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	params := api.ParsePagination(r)

	alerts, total, err := h.lifecycle.ListAlerts(status, params.Offset(), params.PerPage)
	if err != nil {
		log.Printf("APIHandler: Failed to list alerts: %v", err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to get alerts")
		return
	}

	api.RespondJSON(w, http.StatusOK, api.ListResponse{
		Items:      api.AlertsToListItems(alerts),
		Page:       params.Page,
		PerPage:    params.PerPage,
		Total:      total,
		TotalPages: params.TotalPages(total),
	})
}

// handleAlertByID handles GET /api/alerts/{id} and the lifecycle actions
// POST /api/alerts/{id}/acknowledge and POST /api/alerts/{id}/resolve
func (h *APIHandler) handleAlertByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/alerts/")

	id, action, _ := strings.Cut(path, "/")
	if id == "" {
		api.RespondError(w, http.StatusNotFound, "Alert not found")
		return
	}

	switch action {
	case "":
		h.getAlert(w, r, id)
	case "acknowledge":
		h.acknowledgeAlert(w, r, id)
	case "resolve":
		h.resolveAlert(w, r, id)
	default:
		api.RespondError(w, http.StatusNotFound, "Not found")
	}
}

func (h *APIHandler) getAlert(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	alert, err := h.lifecycle.GetAlert(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.RespondError(w, http.StatusNotFound, "Alert not found")
			return
		}
		log.Printf("APIHandler: Failed to get alert %s: %v", id, err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to get alert")
		return
	}

	api.RespondJSON(w, http.StatusOK, alert)
}

func (h *APIHandler) acknowledgeAlert(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// The body is optional when the caller is authenticated
	var req api.AcknowledgeAlertRequest
	if r.ContentLength > 0 {
		if err := api.DecodeJSON(r, &req); err != nil {
			api.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	// Fall back to the authenticated user when the body omits user_id
	if req.UserID == "" {
		req.UserID = middleware.GetUserFromContext(r.Context())
	}

	if fieldErrors := api.Validate(&req); fieldErrors != nil {
		api.RespondValidationError(w, fieldErrors)
		return
	}

	ok, err := h.lifecycle.Acknowledge(id, req.UserID)
	if err != nil {
		log.Printf("APIHandler: Failed to acknowledge alert %s: %v", id, err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to acknowledge alert")
		return
	}
	if !ok {
		api.RespondError(w, http.StatusConflict, "Alert cannot be acknowledged")
		return
	}

	log.Printf("APIHandler: Alert %s acknowledged by %s", id, req.UserID)
	api.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"alert_id": id,
		"status":   database.AlertStatusAcknowledged,
	})
}

func (h *APIHandler) resolveAlert(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req api.ResolveAlertRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if fieldErrors := api.Validate(&req); fieldErrors != nil {
		api.RespondValidationError(w, fieldErrors)
		return
	}

	ok, err := h.lifecycle.Resolve(id, req.ResolutionNotes)
	if err != nil {
		log.Printf("APIHandler: Failed to resolve alert %s: %v", id, err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to resolve alert")
		return
	}
	if !ok {
		api.RespondError(w, http.StatusNotFound, "Alert not found")
		return
	}

	log.Printf("APIHandler: Alert %s resolved", id)
	api.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"alert_id": id,
		"status":   database.AlertStatusResolved,
	})
}

// parseAlertStatus maps the status query parameter to a filter value.
// An empty string means no filter.
func parseAlertStatus(s string) (database.AlertStatus, bool) {
	switch database.AlertStatus(s) {
	case "", database.AlertStatusCreated, database.AlertStatusNotified,
		database.AlertStatusAcknowledged, database.AlertStatusResolved:
		return database.AlertStatus(s), true
	default:
		return "", false
	}
}
