package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	applog "github.com/janisto/provider-onboarding/internal/platform/logging"
)

// RateLimitConfig bounds requests per client address.
type RateLimitConfig struct {
	// RPS is the sustained rate. Zero or less disables limiting.
	RPS float64
	// Burst is the bucket size; values below 1 become 1.
	Burst int
	// IdleTTL is how long an idle client's bucket is kept.
	IdleTTL time.Duration
	// SkipPaths are path prefixes that are never limited.
	SkipPaths []string
}

// RateLimiter holds one token bucket per client address.
type RateLimiter struct {
	cfg      RateLimitConfig
	mu       sync.Mutex
	limiters *cache.Cache
}

// NewRateLimiter creates a limiter. Buckets idle for cfg.IdleTTL (default ten
// minutes) are evicted.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		cfg:      cfg,
		limiters: cache.New(cfg.IdleTTL, cfg.IdleTTL),
	}
}

// Allow reports whether key may make a request now, and otherwise how long it
// should wait.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	if l == nil || l.cfg.RPS <= 0 {
		return true, 0
	}
	lim := l.limiter(key)
	res := lim.Reserve()
	if !res.OK() {
		return false, time.Second
	}
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		return false, delay
	}
	return true, 0
}

// Clients returns the number of tracked client addresses.
func (l *RateLimiter) Clients() int {
	return l.limiters.ItemCount()
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.limiters.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.limiters.SetDefault(key, lim)
		return lim
	}
	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), l.cfg.Burst)
	l.limiters.SetDefault(key, lim)
	return lim
}

// Middleware rejects requests over the limit with 429 and a problem document.
func (l *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range l.cfg.SkipPaths {
				if strings.HasPrefix(r.URL.Path, p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			ip := ClientIP(r)
			ok, wait := l.Allow(ip)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			applog.LogWarn(r.Context(), "rate limit exceeded",
				zap.String("client", ip),
				zap.Duration("retryAfter", wait),
			)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			w.Header().Set("Content-Type", "application/problem+json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(&huma.ErrorModel{
				Title:    http.StatusText(http.StatusTooManyRequests),
				Status:   http.StatusTooManyRequests,
				Detail:   "too many requests, retry later",
				Instance: r.URL.Path,
			})
		})
	}
}

// ClientIP returns the host part of r.RemoteAddr. Behind a proxy, mount chi's
// RealIP middleware first.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
