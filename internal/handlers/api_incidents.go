package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/echo-project/crisis-engine/internal/api"
	"github.com/echo-project/crisis-engine/internal/database"
	"gorm.io/gorm"
)

// handleIncidents handles GET /api/incidents and POST /api/incidents
func (h *APIHandler) handleIncidents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		status, ok := parseIncidentStatus(r.URL.Query().Get("status"))
		if !ok {
			api.RespondError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}

		params := api.ParsePagination(r)

		incidents, total, err := h.incidents.ListIncidents(status, params.Offset(), params.PerPage)
		if err != nil {
			log.Printf("APIHandler: Failed to list incidents: %v", err)
			api.RespondError(w, http.StatusInternalServerError, "Failed to get incidents")
			return
		}

		api.RespondJSON(w, http.StatusOK, api.ListResponse{
			Items:      api.IncidentsToListItems(incidents),
			Page:       params.Page,
			PerPage:    params.PerPage,
			Total:      total,
			TotalPages: params.TotalPages(total),
		})

	case http.MethodPost:
		var req api.CreateManualIncidentRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			api.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}

		if fieldErrors := api.Validate(&req); fieldErrors != nil {
			api.RespondValidationError(w, fieldErrors)
			return
		}

		reports, err := h.incidents.ReportsByIDs(req.ReportIDs)
		if err != nil {
			api.RespondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		incidentID, err := h.incidents.CreateIncident(r.Context(), reports, database.SourceTypeManual)
		if err != nil {
			log.Printf("APIHandler: Failed to create incident: %v", err)
			api.RespondError(w, http.StatusInternalServerError, "Failed to create incident")
			return
		}

		api.RespondJSON(w, http.StatusCreated, api.CreateIncidentResponse{IncidentID: incidentID})

	default:
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleIncidentByID handles GET /api/incidents/{id}
func (h *APIHandler) handleIncidentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/incidents/")
	if id == "" || strings.Contains(id, "/") {
		api.RespondError(w, http.StatusNotFound, "Incident not found")
		return
	}

	incident, err := h.incidents.GetIncident(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.RespondError(w, http.StatusNotFound, "Incident not found")
			return
		}
		log.Printf("APIHandler: Failed to get incident %s: %v", id, err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to get incident")
		return
	}

	api.RespondJSON(w, http.StatusOK, incident)
}

// parseIncidentStatus maps the status query parameter to a filter value.
// An empty string means no filter.
func parseIncidentStatus(s string) (database.IncidentStatus, bool) {
	switch database.IncidentStatus(s) {
	case "", database.IncidentStatusNew, database.IncidentStatusResolved:
		return database.IncidentStatus(s), true
	default:
		return "", false
	}
}
