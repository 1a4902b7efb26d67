package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	Handler("1.2.3", func() int { return 3 })(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}
	if cc := resp.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected Cache-Control no-store, got %s", cc)
	}

	var h Response
	if err := json.Unmarshal(resp.Body.Bytes(), &h); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if h.Status != "healthy" {
		t.Fatalf("expected status 'healthy', got %s", h.Status)
	}
	if h.Version != "1.2.3" || h.ActiveDrafts != 3 {
		t.Errorf("unexpected response %+v", h)
	}
}

func TestHealthHandlerWithoutDraftCounter(t *testing.T) {
	resp := httptest.NewRecorder()
	Handler("dev", nil)(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	var h Response
	if err := json.Unmarshal(resp.Body.Bytes(), &h); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if h.ActiveDrafts != 0 {
		t.Errorf("expected 0 active drafts, got %d", h.ActiveDrafts)
	}
}
