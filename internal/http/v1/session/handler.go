package session

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/provider-onboarding/internal/platform/logging"
	"github.com/janisto/provider-onboarding/internal/platform/metrics"
	"github.com/janisto/provider-onboarding/internal/service/accounts"
)

// Screens a client opens after logging in.
const (
	NextProviderDashboard = "provider-dashboard"
	NextClientHome        = "client-home"
)

const msgLoginUnavailable = "Connexion impossible. Veuillez réessayer plus tard."

// Register registers the login endpoint.
func Register(api huma.API, svc accounts.Service, rec *metrics.Recorder) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/login",
		Summary:     "Log in",
		Description: "Exchanges credentials for a token from the accounts service and tells the client which home screen to open.",
		Tags:        []string{"Session"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		s, err := svc.Login(ctx, accounts.Credentials{
			Email:    strings.TrimSpace(input.Body.Email),
			Password: input.Body.Password,
			Role:     accounts.Role(input.Body.Role),
		})
		if err != nil {
			outcome, herr := mapLoginError(err)
			rec.Login(outcome)
			applog.LogWarn(ctx, "login failed", zap.String("outcome", outcome), zap.Error(err))
			applog.LogAuditEvent(ctx, applog.AuditEvent{
				Action:       "session.login",
				ResourceType: "account",
				Result:       applog.AuditFailure,
				Details:      map[string]any{"outcome": outcome},
			})
			return nil, herr
		}

		rec.Login(metrics.OutcomeSuccess)
		applog.LogAuditEvent(ctx, applog.AuditEvent{
			Action:       "session.login",
			ResourceType: "account",
			ResourceID:   s.UserID,
			Result:       applog.AuditSuccess,
			Details:      map[string]any{"role": string(s.Role)},
		})
		return &LoginOutput{Body: Session{
			Token:  s.Token,
			UserID: s.UserID,
			Role:   string(s.Role),
			Next:   nextScreen(s.Role),
		}}, nil
	})
}

func nextScreen(role accounts.Role) string {
	if role == accounts.RoleProvider {
		return NextProviderDashboard
	}
	return NextClientHome
}

func mapLoginError(err error) (string, error) {
	var upstream *accounts.UpstreamError
	if errors.As(err, &upstream) && upstream.Kind == accounts.UpstreamErrorKindRejected &&
		upstream.Status < http.StatusInternalServerError {
		msg := strings.TrimSpace(upstream.ServerMessage)
		if msg == "" {
			msg = "Identifiants incorrects."
		}
		return metrics.OutcomeRejected, huma.Error401Unauthorized(msg)
	}
	return metrics.OutcomeNetwork, huma.Error502BadGateway(msgLoginUnavailable)
}
