package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func runRequestID(t *testing.T, req *http.Request) (string, string) {
	t.Helper()
	var ctxID string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = GetRequestID(r.Context())
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return ctxID, w.Header().Get(RequestIDHeader)
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/incidents", nil)
	ctxID, headerID := runRequestID(t, req)

	if headerID == "" {
		t.Fatal("expected X-Request-ID on response")
	}
	if ctxID != headerID {
		t.Errorf("context ID %q does not match header ID %q", ctxID, headerID)
	}
	if _, err := uuid.Parse(headerID); err != nil {
		t.Errorf("generated ID is not a UUID: %q", headerID)
	}
}

func TestRequestIDMiddleware_ReusesClientID(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/alerts", nil)
	req.Header.Set(RequestIDHeader, "dashboard-trace-42")

	ctxID, headerID := runRequestID(t, req)
	if headerID != "dashboard-trace-42" {
		t.Errorf("expected client ID echoed back, got %q", headerID)
	}
	if ctxID != "dashboard-trace-42" {
		t.Errorf("expected client ID on context, got %q", ctxID)
	}
}

func TestRequestIDMiddleware_UniquePerRequest(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		_, id := runRequestID(t, httptest.NewRequest("GET", "/health", nil))
		if seen[id] {
			t.Fatalf("duplicate request ID %q", id)
		}
		seen[id] = true
	}
}

func TestGetRequestID_OutsideRequest(t *testing.T) {
	if id := GetRequestID(context.Background()); id != "" {
		t.Errorf("expected empty ID, got %q", id)
	}
}
