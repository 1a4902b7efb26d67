package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/provider-onboarding/internal/config"
	"github.com/janisto/provider-onboarding/internal/http/health"
	"github.com/janisto/provider-onboarding/internal/http/v1/routes"
	applog "github.com/janisto/provider-onboarding/internal/platform/logging"
	"github.com/janisto/provider-onboarding/internal/platform/metrics"
	appmiddleware "github.com/janisto/provider-onboarding/internal/platform/middleware"
	"github.com/janisto/provider-onboarding/internal/platform/respond"
	"github.com/janisto/provider-onboarding/internal/service/accounts"
	"github.com/janisto/provider-onboarding/internal/service/drafts"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const (
	apiBasePath = "/v1"
	docsPath    = "/api-docs"
)

func main() {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		applog.LogFatal(context.Background(), "invalid configuration", err)
	}
	applog.SetLevel(cfg.LogLevel)

	accountsClient := accounts.NewClient(
		&http.Client{Timeout: cfg.AccountsTimeout},
		accounts.WithBaseURL(cfg.AccountsBaseURL),
		accounts.WithUserAgent("provider-onboarding/"+Version),
	)
	handler, store := newRouter(cfg, accountsClient)

	srv := newHTTPServer(cfg, handler)

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(context.Background(), "server listening",
			zap.String("addr", srv.Addr),
			zap.String("accountsBaseURL", cfg.AccountsBaseURL),
			zap.Duration("draftTTL", store.TTL()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		applog.LogError(context.Background(), "listen failed", err, zap.String("addr", srv.Addr))
		os.Exit(1)
	case <-stop:
		applog.LogInfo(context.Background(), "shutdown signal received",
			zap.Int("activeDrafts", store.Count()),
		)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		applog.LogError(ctx, "server shutdown error", err)
	}
	applog.LogInfo(context.Background(), "server exited")
}

// newRouter builds the full handler tree. Drafts submit through svc.
func newRouter(cfg *config.Config, svc accounts.Service) (http.Handler, *drafts.Store) {
	store := drafts.NewStore(svc, cfg.DraftTTL)
	rec := metrics.New(store.Count)

	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	// Base middleware stack
	router.Use(
		appmiddleware.Security(apiBasePath+docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(cfg.CORSAllowedOrigins...),
		appmiddleware.RequestID(),
		// RealIP extracts client IP from X-Real-IP or X-Forwarded-For headers.
		// SECURITY: Only use behind a trusted reverse proxy (e.g., Cloud Run, nginx).
		// Without a trusted proxy, clients can spoof their IP address.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	router.Get("/health", health.Handler(Version, store.Count))
	router.Method(http.MethodGet, "/metrics", rec.Handler())

	limiter := appmiddleware.NewRateLimiter(appmiddleware.RateLimitConfig{
		RPS:       cfg.RateLimitRPS,
		Burst:     cfg.RateLimitBurst,
		SkipPaths: []string{apiBasePath + docsPath, apiBasePath + "/openapi", apiBasePath + "/schemas"},
	})
	v1 := chi.NewRouter()
	v1.NotFound(respond.NotFoundHandler())
	v1.MethodNotAllowed(respond.MethodNotAllowedHandler())
	v1.Use(limiter.Middleware())
	router.Mount(apiBasePath, v1)

	hcfg := huma.DefaultConfig("Provider Onboarding API", Version)
	hcfg.DocsPath = docsPath
	hcfg.Servers = []*huma.Server{{URL: apiBasePath}}
	// Allow JSON fallback for wildcard Accept headers (e.g., */*) since Huma's
	// negotiation uses exact matching and doesn't interpret wildcards per
	// RFC 9110 section 12.5.1.
	api := humachi.New(v1, hcfg)
	addCBORContentTypes(api.OpenAPI())

	routes.Register(api, store, svc, rec)
	return router, store
}

// addCBORContentTypes advertises application/cbor wherever JSON is accepted or
// returned.
func addCBORContentTypes(oapi *huma.OpenAPI) {
	oapi.OnAddOperation = append(oapi.OnAddOperation,
		func(_ *huma.OpenAPI, op *huma.Operation) {
			if op.RequestBody != nil && op.RequestBody.Content != nil {
				if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
					op.RequestBody.Content["application/cbor"] = jsonContent
				}
			}
			for _, resp := range op.Responses {
				if resp.Content == nil {
					continue
				}
				if jsonContent, ok := resp.Content["application/json"]; ok {
					resp.Content["application/cbor"] = jsonContent
				}
			}
		},
	)
}

// newHTTPServer keeps the write deadline above the accounts timeout so a slow
// submission still gets its response written.
func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      cfg.AccountsTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}
}
