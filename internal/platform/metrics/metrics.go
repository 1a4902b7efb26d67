// Package metrics exposes prometheus counters for the onboarding flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "onboarding"

// Submission outcomes.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation"
	OutcomeRejected   = "rejected"
	OutcomeNetwork    = "network"
	OutcomeConflict   = "conflict"
)

// Recorder owns the service's collectors. A nil *Recorder records nothing.
type Recorder struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	logins      *prometheus.CounterVec
	drafts      prometheus.Counter
	activeDraft prometheus.GaugeFunc
}

// New registers the collectors on a fresh registry together with the Go and
// process collectors. activeDrafts, when non-nil, is sampled on every scrape.
func New(activeDrafts func() int) *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Account creation attempts by role and outcome.",
		}, []string{"role", "outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		drafts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drafts_created_total",
			Help:      "Provider registration drafts created.",
		}),
	}
	reg.MustRegister(
		r.submissions,
		r.logins,
		r.drafts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if activeDrafts != nil {
		r.activeDraft = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "drafts_active",
			Help:      "Provider registration drafts currently held in memory.",
		}, func() float64 { return float64(activeDrafts()) })
		reg.MustRegister(r.activeDraft)
	}
	return r
}

// Submission counts one account creation attempt.
func (r *Recorder) Submission(role, outcome string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(role, outcome).Inc()
}

// Login counts one login attempt.
func (r *Recorder) Login(outcome string) {
	if r == nil {
		return
	}
	r.logins.WithLabelValues(outcome).Inc()
}

func (r *Recorder) DraftCreated() {
	if r == nil {
		return
	}
	r.drafts.Inc()
}

// Gatherer returns the registry backing r.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
