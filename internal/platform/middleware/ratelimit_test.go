package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimiterAllowsBurstThenRejects(t *testing.T) {
	l := NewRateLimiter(RateLimitConfig{RPS: 0.001, Burst: 2})
	h := l.Middleware()(okHandler())

	for i := range 2 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/login", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/login", nil)
	req.RemoteAddr = "203.0.113.7:5001"
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var problem huma.ErrorModel
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	if problem.Status != http.StatusTooManyRequests || problem.Instance != "/v1/login" {
		t.Fatalf("unexpected problem %+v", problem)
	}
}

func TestRateLimiterIsPerClient(t *testing.T) {
	l := NewRateLimiter(RateLimitConfig{RPS: 0.001, Burst: 1})
	if ok, _ := l.Allow("198.51.100.1"); !ok {
		t.Fatal("first request must pass")
	}
	if ok, wait := l.Allow("198.51.100.1"); ok || wait <= 0 {
		t.Fatalf("second request must wait, got ok=%v wait=%s", ok, wait)
	}
	if ok, _ := l.Allow("198.51.100.2"); !ok {
		t.Fatal("another client has its own bucket")
	}
	if l.Clients() != 2 {
		t.Fatalf("expected 2 tracked clients, got %d", l.Clients())
	}
}

func TestRateLimiterDisabledAndSkipped(t *testing.T) {
	var disabled *RateLimiter
	if ok, _ := disabled.Allow("x"); !ok {
		t.Fatal("nil limiter must allow")
	}
	if ok, _ := NewRateLimiter(RateLimitConfig{}).Allow("x"); !ok {
		t.Fatal("zero rate must allow")
	}

	l := NewRateLimiter(RateLimitConfig{RPS: 0.001, Burst: 1, SkipPaths: []string{"/health"}})
	h := l.Middleware()(okHandler())
	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("health must never be limited, got %d", rec.Code)
		}
	}
}

func TestRateLimiterRefills(t *testing.T) {
	l := NewRateLimiter(RateLimitConfig{RPS: 50, Burst: 1})
	if ok, _ := l.Allow("x"); !ok {
		t.Fatal("first request must pass")
	}
	time.Sleep(60 * time.Millisecond)
	if ok, _ := l.Allow("x"); !ok {
		t.Fatal("bucket should have refilled")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	if got := ClientIP(req); got != "2001:db8::1" {
		t.Fatalf("unexpected ip %q", got)
	}
	req.RemoteAddr = "unix-socket"
	if got := ClientIP(req); got != "unix-socket" {
		t.Fatalf("unexpected fallback %q", got)
	}
}
