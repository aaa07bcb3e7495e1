package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/questkit/quest-engine/internal/storage"
)

func TestHealthHandler(t *testing.T) {
	store := storage.NewMockStorage()
	handler := NewHealthHandler(store, testLogger())

	rr := getPath(t, handler, "/v1/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Storage != "ok" {
		t.Errorf("Expected healthy response, got %+v", resp)
	}
}

func TestHealthHandler_StorageDown(t *testing.T) {
	store := storage.NewMockStorage()
	store.SetPingError(errors.New("connection refused"))
	handler := NewHealthHandler(store, testLogger())

	rr := getPath(t, handler, "/v1/health")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", rr.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "degraded" || resp.Storage != "unavailable" {
		t.Errorf("Expected degraded response, got %+v", resp)
	}
}
