package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/echo-project/crisis-engine/internal/api"
)

// handleProcess handles POST /api/process. It runs a detection pass over
// unprocessed reports synchronously and reports completion.
func (h *APIHandler) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// Detach from the request context so a client disconnect does not
	// cancel collaborator notifications mid-run.
	ctx := context.WithoutCancel(r.Context())
	if err := h.processor.ProcessReports(ctx); err != nil {
		log.Printf("APIHandler: Processing run failed: %v", err)
		api.RespondError(w, http.StatusInternalServerError, "Processing run failed")
		return
	}

	api.RespondJSON(w, http.StatusOK, map[string]string{
		"status": "completed",
	})
}
