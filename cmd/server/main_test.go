package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/provider-onboarding/internal/config"
	"github.com/janisto/provider-onboarding/internal/http/health"
	"github.com/janisto/provider-onboarding/internal/service/accounts"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:            "8080",
		AccountsBaseURL: config.DefaultAccountsBaseURL,
		AccountsTimeout: config.DefaultAccountsTimeout,
		DraftTTL:        config.DefaultDraftTTL,
		RateLimitRPS:    0,
		RateLimitBurst:  1,
	}
}

func testServer(t *testing.T) (http.Handler, *accounts.MockService) {
	t.Helper()
	svc := accounts.NewMockService()
	handler, _ := newRouter(testConfig(), svc)
	return handler, svc
}

func serve(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)
	resp := serve(srv, http.MethodGet, "/health", "", map[string]string{chimiddleware.RequestIDHeader: "test-health-req"})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", resp.Code)
	}
	var h health.Response
	if err := json.Unmarshal(resp.Body.Bytes(), &h); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if h.Status != "healthy" || h.Version != Version {
		t.Fatalf("unexpected health %+v", h)
	}
	if resp.Header().Get("X-Request-Id") != "test-health-req" {
		t.Errorf("expected request id echoed, got %q", resp.Header().Get("X-Request-Id"))
	}
}

func TestNotFoundReturnsProblemDetails(t *testing.T) {
	srv, _ := testServer(t)
	resp := serve(srv, http.MethodGet, "/missing", "", nil)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("expected application/problem+json content type, got %q", ct)
	}
	var problem huma.ErrorModel
	if err := json.Unmarshal(resp.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to unmarshal 404 response: %v", err)
	}
	if problem.Status != http.StatusNotFound || problem.Detail != "resource not found" {
		t.Fatalf("unexpected problem %+v", problem)
	}
}

func TestMethodNotAllowedReturnsProblemDetails(t *testing.T) {
	srv, _ := testServer(t)
	resp := serve(srv, http.MethodPost, "/health", "", nil)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", resp.Code)
	}
	if allow := resp.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
		t.Fatalf("expected Allow header to list GET, got %q", allow)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("expected application/problem+json content type, got %q", ct)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := testServer(t)
	serve(srv, http.MethodPost, "/v1/registrations/provider", "", nil)

	resp := serve(srv, http.MethodGet, "/metrics", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, want := range []string{"onboarding_drafts_created_total 1", "onboarding_drafts_active 1"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in metrics output", want)
		}
	}
}

func TestProviderRegistrationFlow(t *testing.T) {
	srv, svc := testServer(t)

	resp := serve(srv, http.MethodPost, "/v1/registrations/provider", "", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	loc := resp.Header().Get("Location")
	if !strings.HasPrefix(loc, "/v1/registrations/provider/") {
		t.Fatalf("unexpected Location %q", loc)
	}

	body := `{"companyName":"Dupont","email":"contact@dupont.fr","phone":"0612345678",` +
		`"password":"s3cretpass","confirmPassword":"s3cretpass","category":"plumbing",` +
		`"professionalStatus":"individual"}`
	if resp := serve(srv, http.MethodPatch, loc, body, nil); resp.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	for i := 0; i < 3; i++ {
		if resp := serve(srv, http.MethodPost, loc+"/next", "", nil); resp.Code != http.StatusOK {
			t.Fatalf("next: expected 200, got %d", resp.Code)
		}
	}

	resp = serve(srv, http.MethodPost, loc+"/submit", "", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var reg struct {
		Next string `json:"next"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &reg); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if reg.Next != "login" {
		t.Errorf("expected next login, got %q", reg.Next)
	}
	if svc.Calls("RegisterProvider") != 1 {
		t.Errorf("expected one request, got %d", svc.Calls("RegisterProvider"))
	}

	resp = serve(srv, http.MethodPost, "/v1/login", `{"email":"contact@dupont.fr","password":"s3cretpass"}`, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"next":"provider-dashboard"`) {
		t.Errorf("unexpected login response %s", resp.Body.String())
	}
}

func TestRateLimitAppliesToAPIOnly(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	srv, _ := newRouter(cfg, accounts.NewMockService())

	if resp := serve(srv, http.MethodPost, "/v1/registrations/provider", "", nil); resp.Code != http.StatusCreated {
		t.Fatalf("first request: expected 201, got %d", resp.Code)
	}
	resp := serve(srv, http.MethodPost, "/v1/registrations/provider", "", nil)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	for i := 0; i < 3; i++ {
		if resp := serve(srv, http.MethodGet, "/health", "", nil); resp.Code != http.StatusOK {
			t.Fatalf("health must not be limited, got %d", resp.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	cfg := testConfig()
	cfg.CORSAllowedOrigins = []string{"https://app.example.com"}
	srv, _ := newRouter(cfg, accounts.NewMockService())

	resp := serve(srv, http.MethodOptions, "/v1/registrations/provider", "", map[string]string{
		"Origin":                        "https://app.example.com",
		"Access-Control-Request-Method": http.MethodPost,
	})
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("expected allowed origin, got %q", got)
	}
}

func TestFallbackToJSONForUnknownAccept(t *testing.T) {
	srv, _ := testServer(t)
	resp := serve(srv, http.MethodPost, "/v1/registrations/provider", "", map[string]string{"Accept": "text/plain"})

	// Huma falls back to JSON when the Accept header cannot be satisfied,
	// as permitted by RFC 9110 section 12.4.1.
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 with JSON fallback, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json content type, got %q", ct)
	}
}

func TestCBORAcceptHeader(t *testing.T) {
	srv, _ := testServer(t)
	resp := serve(srv, http.MethodPost, "/v1/registrations/provider", "", map[string]string{"Accept": "application/cbor"})

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/cbor" {
		t.Fatalf("expected application/cbor content type, got %q", ct)
	}
}

func TestOpenAPICBORContentTypes(t *testing.T) {
	api := humachi.New(chi.NewRouter(), huma.DefaultConfig("Test API", "1.0.0"))
	addCBORContentTypes(api.OpenAPI())

	type TestInput struct {
		Body struct {
			Name string `json:"name"`
		}
	}
	type TestOutput struct {
		Body struct {
			Message string `json:"message"`
		}
	}
	huma.Post(api, "/test", func(_ context.Context, input *TestInput) (*TestOutput, error) {
		out := &TestOutput{}
		out.Body.Message = "Bonjour, " + input.Body.Name
		return out, nil
	})
	huma.Get(api, "/no-body", func(_ context.Context, _ *struct{}) (*struct{}, error) {
		return nil, nil
	})

	op := api.OpenAPI().Paths["/test"].Post
	if op.RequestBody == nil {
		t.Fatal("expected request body in operation")
	}
	if _, ok := op.RequestBody.Content["application/cbor"]; !ok {
		t.Fatal("expected application/cbor in request body content")
	}
	if _, ok := op.Responses["200"].Content["application/cbor"]; !ok {
		t.Fatal("expected application/cbor in 200 response content")
	}
	if api.OpenAPI().Paths["/no-body"].Get.RequestBody != nil {
		t.Fatal("expected no request body for GET")
	}
}

func TestHTTPServerTimeouts(t *testing.T) {
	cfg := testConfig()
	cfg.Port = "9090"
	cfg.AccountsTimeout = 20 * time.Second
	srv := newHTTPServer(cfg, http.NotFoundHandler())

	if srv.Addr != ":9090" {
		t.Errorf("expected :9090, got %q", srv.Addr)
	}
	if srv.WriteTimeout <= cfg.AccountsTimeout {
		t.Errorf("write timeout %v must exceed accounts timeout %v", srv.WriteTimeout, cfg.AccountsTimeout)
	}
	if srv.ReadHeaderTimeout != 2*time.Second || srv.MaxHeaderBytes != 64<<10 {
		t.Errorf("unexpected server limits %+v", srv)
	}
}

func TestServerShutdown(t *testing.T) {
	handler, _ := testServer(t)
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	listenErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
	select {
	case err := <-listenErr:
		t.Fatalf("unexpected listen error after shutdown: %v", err)
	default:
	}
}

func TestVersionVariable(t *testing.T) {
	if Version != "dev" {
		t.Errorf("expected default Version 'dev', got %q", Version)
	}
}
