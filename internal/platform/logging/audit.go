package logging

import (
	"context"

	"go.uber.org/zap"
)

// Audit results.
const (
	AuditSuccess = "success"
	AuditFailure = "failure"
)

// AuditEvent describes an account-affecting action. Visitors are anonymous
// until their account exists, so Actor defaults to the client address.
type AuditEvent struct {
	Action       string
	Actor        string
	ResourceType string
	ResourceID   string
	Result       string
	Details      map[string]any
}

// LogAuditEvent writes ev with the request-scoped logger. Details must never
// carry credentials.
func LogAuditEvent(ctx context.Context, ev AuditEvent) {
	if ev.Actor == "" {
		ev.Actor = ClientIPFromContext(ctx)
	}
	fields := []zap.Field{
		zap.String("audit.action", ev.Action),
		zap.String("audit.actor", ev.Actor),
		zap.String("audit.resource_type", ev.ResourceType),
		zap.String("audit.resource_id", ev.ResourceID),
		zap.String("audit.result", ev.Result),
	}
	if len(ev.Details) > 0 {
		fields = append(fields, zap.Any("audit.details", ev.Details))
	}
	LoggerFromContext(ctx).Info("audit event", fields...)
}
