package handlers_test

import (
	"net/http"
	"testing"
)

func TestHealth(t *testing.T) {
	app := newTestApp()

	status, result := doJSON(t, app, "GET", "/api/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if result["message"] != "Task Manager API is running" {
		t.Errorf("Unexpected health message: %v", result["message"])
	}
	if result["version"] == nil || result["timestamp"] == nil {
		t.Errorf("Expected version and timestamp in health response")
	}
}

func TestUnknownRouteEnvelope(t *testing.T) {
	app := newTestApp()

	status, result := doJSON(t, app, "GET", "/api/nope", "", nil)
	if status != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", status)
	}
	if result["success"] != false {
		t.Errorf("Expected success=false in 404 envelope")
	}
	if errString(result) != "Endpoint not found" {
		t.Errorf("Unexpected error message: %q", errString(result))
	}
}
