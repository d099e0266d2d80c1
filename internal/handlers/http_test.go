package handlers

import (
	"net/http"
	"testing"

	"github.com/echo-project/crisis-engine/internal/testhelpers"
)

func TestHealthEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	NewHTTPHandler().SetupRoutes(mux)

	testhelpers.NewHTTPTestContext(t, http.MethodGet, "/health", nil).
		Execute(mux).
		AssertStatus(http.StatusOK).
		AssertHeader("Content-Type", "application/json").
		AssertBodyContains(`"status":"ok"`)

	testhelpers.NewHTTPTestContext(t, http.MethodPost, "/health", nil).
		Execute(mux).
		AssertStatus(http.StatusMethodNotAllowed)
}
