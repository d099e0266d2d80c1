package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/echo-project/crisis-engine/internal/detect"
	"github.com/echo-project/crisis-engine/internal/directory"
	"github.com/echo-project/crisis-engine/internal/jobs"
	"github.com/echo-project/crisis-engine/internal/services"
	"github.com/echo-project/crisis-engine/internal/testhelpers"
	"gorm.io/gorm"
)

// setupAPI wires the API handler against a fresh in-memory database
func setupAPI(t *testing.T) (*gorm.DB, *http.ServeMux) {
	t.Helper()

	db := testhelpers.SetupTestDB(t)
	escalator := services.NewEscalationService(db, directory.NewFromMap(nil), nil, nil, nil, nil)
	incidents := services.NewIncidentService(db, detect.NewSeverityScorer(), escalator)
	lifecycle := services.NewLifecycleService(db)
	processor := jobs.NewReportProcessor(db, detect.NewOutlierDetector(), incidents, nil, 24, 1.0, 3)

	h := NewAPIHandler(incidents, lifecycle, processor)
	mux := http.NewServeMux()
	h.SetupRoutes(mux)
	return db, mux
}

func TestAPIHandler_SetupRoutesDoesNotPanic(t *testing.T) {
	_, mux := setupAPI(t)
	if mux == nil {
		t.Fatal("mux should not be nil after SetupRoutes")
	}
}

// captureRunner records the context a processing run receives.
type captureRunner struct {
	ctx context.Context
}

func (c *captureRunner) ProcessReports(ctx context.Context) error {
	c.ctx = ctx
	return nil
}

func TestProcessTrigger_RunSurvivesClientDisconnect(t *testing.T) {
	runner := &captureRunner{}
	h := NewAPIHandler(nil, nil, runner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // client went away before the run finished

	req := httptest.NewRequest(http.MethodPost, "/api/process", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	h.handleProcess(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if runner.ctx == nil {
		t.Fatal("processor was not invoked")
	}
	if err := runner.ctx.Err(); err != nil {
		t.Errorf("run context should not inherit cancellation, got %v", err)
	}
}

func TestAPIHandler_MethodNotAllowed(t *testing.T) {
	_, mux := setupAPI(t)

	testhelpers.NewHTTPTestContext(t, http.MethodDelete, "/api/incidents", nil).
		Execute(mux).
		AssertStatus(http.StatusMethodNotAllowed)

	testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/alerts", nil).
		Execute(mux).
		AssertStatus(http.StatusMethodNotAllowed)

	testhelpers.NewHTTPTestContext(t, http.MethodGet, "/api/process", nil).
		Execute(mux).
		AssertStatus(http.StatusMethodNotAllowed)
}
