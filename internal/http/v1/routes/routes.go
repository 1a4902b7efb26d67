package routes

import (
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/provider-onboarding/internal/http/v1/onboarding"
	"github.com/janisto/provider-onboarding/internal/http/v1/session"
	"github.com/janisto/provider-onboarding/internal/platform/metrics"
	"github.com/janisto/provider-onboarding/internal/service/accounts"
	"github.com/janisto/provider-onboarding/internal/service/drafts"
)

// Register wires all HTTP routes into the provided API router.
func Register(
	api huma.API,
	store *drafts.Store,
	accountsService accounts.Service,
	rec *metrics.Recorder,
) {
	prefix := apiPrefix(api)

	onboarding.Register(api, store, accountsService, rec, prefix)
	session.Register(api, accountsService, rec)
}

func apiPrefix(api huma.API) string {
	for _, s := range api.OpenAPI().Servers {
		if u, err := url.Parse(s.URL); err == nil && u.Path != "" {
			return u.Path
		}
	}
	return ""
}
