// Package respond writes RFC 9457 problem documents for errors raised outside
// huma operations: unknown routes, wrong methods and panics.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "github.com/janisto/provider-onboarding/internal/platform/logging"
)

const (
	schemaPath = "/schemas/ErrorModel.json"

	contentTypeProblemJSON = "application/problem+json"
	contentTypeProblemCBOR = "application/problem+cbor"

	msgNotFound       = "resource not found"
	msgInternalServer = "internal server error"
)

// problem mirrors huma.ErrorModel plus the $schema link huma adds to its own
// error responses.
type problem struct {
	Schema   string              `json:"$schema,omitempty"`
	Title    string              `json:"title,omitempty"`
	Status   int                 `json:"status,omitempty"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance,omitempty"`
	Errors   []*huma.ErrorDetail `json:"errors,omitempty"`
}

// NotFoundHandler answers unknown routes with 404.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Problem(w, r, http.StatusNotFound, msgNotFound)
	}
}

// MethodNotAllowedHandler answers with 405 and an Allow header listing the
// methods the matched route does support.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allowed := allowedMethods(r); len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
		}
		Problem(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
	}
}

// Problem writes a problem document, negotiating CBOR or JSON from Accept.
func Problem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	body := problem{
		Schema:   schemaURL(r),
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}

	h := w.Header()
	h.Set("Link", fmt.Sprintf(`<%s>; rel="describedBy"`, schemaPath))
	if acceptsCBOR(r.Header.Get("Accept")) {
		data, err := cbor.Marshal(body)
		if err != nil {
			applog.LogError(r.Context(), "failed to encode problem", err)
			http.Error(w, http.StatusText(status), status)
			return
		}
		h.Set("Content-Type", contentTypeProblemCBOR)
		w.WriteHeader(status)
		_, _ = w.Write(data)
		return
	}

	h.Set("Content-Type", contentTypeProblemJSON)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		applog.LogError(r.Context(), "failed to encode problem", err)
	}
}

// Recoverer turns panics into 500 problems. http.ErrAbortHandler is re-raised
// so net/http can abort the connection, and nothing is written once the
// handler has started its response.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				applog.LogError(r.Context(), "panic recovered", fmt.Errorf("%v", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				if rw.wroteHeader {
					return
				}
				Problem(rw, r, http.StatusInternalServerError, msgInternalServer)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func schemaURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + schemaPath
}

func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}
	path := rctx.RoutePath
	if path == "" {
		path = r.URL.RawPath
	}
	if path == "" {
		path = r.URL.Path
	}
	var allowed []string
	for _, m := range []string{
		http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	} {
		if rctx.Routes.Match(chi.NewRouteContext(), m, path) {
			allowed = append(allowed, m)
		}
	}
	return allowed
}

type preference struct {
	q           float64
	specificity int
	set         bool
}

func (p preference) beats(o preference) bool {
	if !o.set {
		return p.set
	}
	return p.set && (p.q > o.q || (p.q == o.q && p.specificity > o.specificity))
}

// acceptsCBOR ranks the JSON and CBOR families of the Accept header by
// q-value, then by specificity. Ties and wildcards go to JSON.
func acceptsCBOR(accept string) bool {
	var jsonPref, cborPref preference
	for part := range strings.SplitSeq(accept, ",") {
		params := strings.Split(part, ";")
		mediaType := strings.ToLower(strings.TrimSpace(params[0]))
		q := 1.0
		for _, p := range params[1:] {
			k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || strings.TrimSpace(k) != "q" {
				continue
			}
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				q = parsed
			}
		}
		if q <= 0 {
			continue
		}

		var target *preference
		specificity := 1
		switch mediaType {
		case "application/problem+cbor":
			target, specificity = &cborPref, 2
		case "application/cbor":
			target = &cborPref
		case "application/problem+json":
			target, specificity = &jsonPref, 2
		case "application/json":
			target = &jsonPref
		case "*/*", "application/*":
			target, specificity = &jsonPref, 0
		default:
			continue
		}
		candidate := preference{q: q, specificity: specificity, set: true}
		if candidate.beats(*target) {
			*target = candidate
		}
	}
	return cborPref.beats(jsonPref)
}
