package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

func serveRequestID(t *testing.T, incoming string) (ctxID, headerID string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if incoming != "" {
		req.Header.Set(chimiddleware.RequestIDHeader, incoming)
	}
	rec := httptest.NewRecorder()
	RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctxID = chimiddleware.GetReqID(r.Context())
	})).ServeHTTP(rec, req)
	return ctxID, rec.Header().Get(chimiddleware.RequestIDHeader)
}

func TestRequestIDGeneratesUUIDv4(t *testing.T) {
	ctxID, headerID := serveRequestID(t, "")
	if ctxID == "" || ctxID != headerID {
		t.Fatalf("expected matching ids, got %q and %q", ctxID, headerID)
	}
	parsed, err := uuid.Parse(ctxID)
	if err != nil {
		t.Fatalf("request id %q is not a UUID: %v", ctxID, err)
	}
	if parsed.Version() != 4 {
		t.Fatalf("expected UUIDv4, got version %d", parsed.Version())
	}
}

func TestRequestIDPreservesValidHeader(t *testing.T) {
	ctxID, headerID := serveRequestID(t, "mobile-7f3a")
	if ctxID != "mobile-7f3a" || headerID != "mobile-7f3a" {
		t.Fatalf("expected incoming id to be kept, got %q / %q", ctxID, headerID)
	}
}

func TestRequestIDReplacesInvalidHeader(t *testing.T) {
	for _, incoming := range []string{
		strings.Repeat("a", maxRequestIDLength+1),
		"line\nbreak",
		"tab\tid",
		"café",
	} {
		ctxID, _ := serveRequestID(t, incoming)
		if ctxID == incoming {
			t.Errorf("expected %q to be replaced", incoming)
		}
		if _, err := uuid.Parse(ctxID); err != nil {
			t.Errorf("expected generated UUID, got %q", ctxID)
		}
	}
}
