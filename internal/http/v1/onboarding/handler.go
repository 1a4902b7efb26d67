package onboarding

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/provider-onboarding/internal/platform/logging"
	"github.com/janisto/provider-onboarding/internal/platform/metrics"
	"github.com/janisto/provider-onboarding/internal/registration"
	"github.com/janisto/provider-onboarding/internal/service/accounts"
	"github.com/janisto/provider-onboarding/internal/service/drafts"
)

const (
	draftsPath    = "/registrations/provider"
	draftPath     = draftsPath + "/{id}"
	resourceDraft = "provider_draft"
)

// Register registers the registration endpoints. Provider wizards live in
// store; client sign-ups go straight to svc.
func Register(api huma.API, store *drafts.Store, svc accounts.Service, rec *metrics.Recorder, prefix string) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-provider-draft",
		Method:        http.MethodPost,
		Path:          draftsPath,
		Summary:       "Start a provider registration",
		Description:   "Creates an empty provider registration wizard on the first step.",
		Tags:          []string{"Registration"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, _ *DraftCreateInput) (*DraftCreateOutput, error) {
		d := store.Create()
		rec.DraftCreated()
		applog.LogAuditEvent(ctx, applog.AuditEvent{
			Action:       "registration.draft.create",
			ResourceType: resourceDraft,
			ResourceID:   d.ID,
			Result:       applog.AuditSuccess,
		})
		return &DraftCreateOutput{
			Location: prefix + draftsPath + "/" + d.ID,
			Body:     toHTTPDraft(d),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-provider-draft",
		Method:      http.MethodGet,
		Path:        draftPath,
		Summary:     "Get a provider registration",
		Description: "Returns the entered values, validation messages and current step. Passwords are never returned.",
		Tags:        []string{"Registration"},
	}, func(_ context.Context, input *DraftPathInput) (*DraftOutput, error) {
		d, err := store.Get(input.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return &DraftOutput{Body: toHTTPDraft(d)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-provider-draft",
		Method:      http.MethodPatch,
		Path:        draftPath,
		Summary:     "Update provider registration fields",
		Description: "Writes the provided fields. With validate=true each written field is validated, as when it loses focus.",
		Tags:        []string{"Registration"},
	}, func(ctx context.Context, input *DraftUpdateInput) (*DraftOutput, error) {
		updates := fieldUpdates(input)
		if len(updates) == 0 {
			return nil, huma.Error422UnprocessableEntity("at least one field must be provided")
		}
		d, err := store.Get(input.ID)
		if err != nil {
			return nil, mapError(err)
		}
		for _, u := range updates {
			if err := d.Wizard.UpdateField(u.field, u.value); err != nil {
				applog.LogWarn(ctx, "draft update refused",
					zap.String("draftId", d.ID),
					zap.String("field", u.field.String()),
					zap.Error(err),
				)
				return nil, mapError(err)
			}
		}
		if input.Validate {
			for _, u := range updates {
				if _, err := d.Wizard.ValidateField(u.field); err != nil {
					return nil, mapError(err)
				}
			}
		}
		return &DraftOutput{Body: toHTTPDraft(d)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "validate-provider-draft",
		Method:      http.MethodPost,
		Path:        draftPath + "/validate",
		Summary:     "Validate a provider registration",
		Description: "Validates one field, or every field when none is named. Invalid input is reported in the body, not as an error status.",
		Tags:        []string{"Registration"},
	}, func(_ context.Context, input *DraftValidateInput) (*DraftValidateOutput, error) {
		var only registration.Field
		if input.Field != "" {
			f, err := registration.ParseField(input.Field)
			if err != nil {
				return nil, huma.Error422UnprocessableEntity("unknown field", &huma.ErrorDetail{
					Message:  "unknown field",
					Location: "query.field",
					Value:    input.Field,
				})
			}
			only = f
		}
		d, err := store.Get(input.ID)
		if err != nil {
			return nil, mapError(err)
		}

		out := Validation{Valid: true}
		if only != "" {
			msg, err := d.Wizard.ValidateField(only)
			if err != nil {
				return nil, mapError(err)
			}
			out.Valid = msg == ""
			out.Fields = []FieldValidation{{Field: only.String(), Valid: msg == "", Message: msg}}
		} else {
			out.Valid = d.Wizard.ValidateAll()
			errs := d.Wizard.Errors()
			out.Fields = make([]FieldValidation, 0, len(registration.Fields))
			for _, f := range registration.Fields {
				msg := errs[f]
				out.Fields = append(out.Fields, FieldValidation{Field: f.String(), Valid: msg == "", Message: msg})
			}
		}
		out.Draft = toHTTPDraft(d)
		return &DraftValidateOutput{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "next-provider-draft-step",
		Method:      http.MethodPost,
		Path:        draftPath + "/next",
		Summary:     "Go to the next step",
		Description: "Advances one step without validating. Stays on the last step.",
		Tags:        []string{"Registration"},
	}, func(_ context.Context, input *DraftPathInput) (*DraftOutput, error) {
		d, err := store.Get(input.ID)
		if err != nil {
			return nil, mapError(err)
		}
		d.Wizard.Next()
		return &DraftOutput{Body: toHTTPDraft(d)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "previous-provider-draft-step",
		Method:      http.MethodPost,
		Path:        draftPath + "/previous",
		Summary:     "Go to the previous step",
		Description: "Goes back one step keeping every value. On the first step the response asks the client to leave the wizard (next=back).",
		Tags:        []string{"Registration"},
	}, func(_ context.Context, input *DraftPathInput) (*DraftOutput, error) {
		d, err := store.Get(input.ID)
		if err != nil {
			return nil, mapError(err)
		}
		d.Wizard.Previous()
		return &DraftOutput{Body: toHTTPDraft(d)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "goto-provider-draft-step",
		Method:      http.MethodPost,
		Path:        draftPath + "/step",
		Summary:     "Jump to a step",
		Description: "Shows the given step, for example the one holding an invalid field.",
		Tags:        []string{"Registration"},
	}, func(_ context.Context, input *DraftStepInput) (*DraftOutput, error) {
		d, err := store.Get(input.ID)
		if err != nil {
			return nil, mapError(err)
		}
		if err := d.Wizard.GoTo(registration.Step(input.Body.Step)); err != nil {
			return nil, mapError(err)
		}
		return &DraftOutput{Body: toHTTPDraft(d)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "submit-provider-draft",
		Method:        http.MethodPost,
		Path:          draftPath + "/submit",
		Summary:       "Create the provider account",
		Description:   "Validates every field and sends a single account creation request. Only allowed from the last step and never twice at the same time.",
		Tags:          []string{"Registration"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *DraftPathInput) (*RegistrationOutput, error) {
		d, err := store.Get(input.ID)
		if err != nil {
			return nil, mapError(err)
		}
		ctx = applog.WithFields(ctx, zap.String("draftId", d.ID))

		success, err := d.Wizard.Submit(ctx)
		if err != nil {
			rec.Submission(string(accounts.RoleProvider), outcomeOf(err))
			auditSubmission(ctx, "registration.provider.submit", d.ID, err)
			return nil, mapError(err)
		}

		next := d.Signals.Take()
		store.Delete(d.ID)
		rec.Submission(string(accounts.RoleProvider), metrics.OutcomeSuccess)
		auditSubmission(ctx, "registration.provider.submit", d.ID, nil)
		return &RegistrationOutput{Body: Registration{
			Message: success.Message,
			UserID:  success.UserID,
			Next:    string(next),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-provider-draft",
		Method:        http.MethodDelete,
		Path:          draftPath,
		Summary:       "Abandon a provider registration",
		Description:   "Discards the wizard and everything entered.",
		Tags:          []string{"Registration"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DraftPathInput) (*struct{}, error) {
		d, err := store.Get(input.ID)
		if err != nil {
			return nil, mapError(err)
		}
		d.Wizard.Leave()
		store.Delete(d.ID)
		applog.LogAuditEvent(ctx, applog.AuditEvent{
			Action:       "registration.draft.abandon",
			ResourceType: resourceDraft,
			ResourceID:   d.ID,
			Result:       applog.AuditSuccess,
		})
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "register-client",
		Method:        http.MethodPost,
		Path:          "/registrations/client",
		Summary:       "Create a client account",
		Description:   "Validates the form and sends a single account creation request.",
		Tags:          []string{"Registration"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *ClientRegisterInput) (*RegistrationOutput, error) {
		success, err := registration.RegisterClient(ctx, svc, registration.ClientForm{
			Name:            input.Body.Name,
			Email:           input.Body.Email,
			Phone:           input.Body.Phone,
			Password:        input.Body.Password,
			ConfirmPassword: input.Body.ConfirmPassword,
		})
		if err != nil {
			rec.Submission(string(accounts.RoleClient), outcomeOf(err))
			auditSubmission(ctx, "registration.client.submit", "", err)
			return nil, mapError(err)
		}
		rec.Submission(string(accounts.RoleClient), metrics.OutcomeSuccess)
		auditSubmission(ctx, "registration.client.submit", success.UserID, nil)
		return &RegistrationOutput{Body: Registration{
			Message: success.Message,
			UserID:  success.UserID,
			Next:    string(registration.SignalLogin),
		}}, nil
	})
}

type fieldUpdate struct {
	field registration.Field
	value any
}

// fieldUpdates lists the provided fields in wizard order, so dependent fields
// are re-checked against their final inputs.
func fieldUpdates(input *DraftUpdateInput) []fieldUpdate {
	b := &input.Body
	var out []fieldUpdate
	text := func(f registration.Field, v *string) {
		if v != nil {
			out = append(out, fieldUpdate{f, *v})
		}
	}
	text(registration.FieldCompanyName, b.CompanyName)
	text(registration.FieldAddress, b.Address)
	text(registration.FieldEmail, b.Email)
	text(registration.FieldPhone, b.Phone)
	text(registration.FieldPassword, b.Password)
	text(registration.FieldConfirmPassword, b.ConfirmPassword)
	text(registration.FieldCategory, b.Category)
	text(registration.FieldProfessionalStatus, b.ProfessionalStatus)
	text(registration.FieldBusinessRegistrationNumber, b.BusinessRegistrationNumber)
	text(registration.FieldDescription, b.Description)
	text(registration.FieldSchedule, b.Schedule)
	text(registration.FieldOpeningTime, b.OpeningTime)
	text(registration.FieldClosingTime, b.ClosingTime)
	text(registration.FieldHourlyRate, b.HourlyRate)
	if b.AcceptsDeposit != nil {
		out = append(out, fieldUpdate{registration.FieldAcceptsDeposit, *b.AcceptsDeposit})
	}
	if b.PaymentMethods != nil {
		out = append(out, fieldUpdate{registration.FieldPaymentMethods, registration.PaymentMethods{
			Card:  b.PaymentMethods.Card,
			Cash:  b.PaymentMethods.Cash,
			Check: b.PaymentMethods.Check,
		}})
	}
	return out
}

// detailOrder covers provider and client fields, earliest on screen first.
var detailOrder = append([]registration.Field{registration.FieldName}, registration.Fields...)

func mapError(err error) error {
	var subErr *registration.SubmissionError
	if errors.As(err, &subErr) {
		return mapSubmissionError(subErr)
	}
	switch {
	case errors.Is(err, drafts.ErrNotFound):
		return huma.Error404NotFound("registration not found")
	case errors.Is(err, registration.ErrSubmissionInProgress):
		return huma.Error409Conflict("a submission is already in progress")
	case errors.Is(err, registration.ErrNotOnFinalStep):
		return huma.Error409Conflict("registration can only be submitted from the last step")
	case errors.Is(err, registration.ErrCompleted):
		return huma.Error409Conflict("registration already completed")
	case errors.Is(err, registration.ErrUnknownField), errors.Is(err, registration.ErrInvalidValue):
		return huma.Error422UnprocessableEntity(err.Error())
	default:
		return huma.Error500InternalServerError("internal error")
	}
}

func mapSubmissionError(e *registration.SubmissionError) error {
	switch e.Kind {
	case registration.KindValidation:
		details := make([]error, 0, len(e.Fields))
		for _, f := range detailOrder {
			if msg, ok := e.Fields[f]; ok {
				details = append(details, &huma.ErrorDetail{Message: msg, Location: "body." + f.String()})
			}
		}
		return huma.Error422UnprocessableEntity(e.Message, details...)
	case registration.KindRejected:
		if e.Status >= http.StatusInternalServerError {
			return huma.Error502BadGateway(e.Message)
		}
		return huma.Error422UnprocessableEntity(e.Message)
	default:
		return huma.Error502BadGateway(e.Message)
	}
}

func outcomeOf(err error) string {
	var subErr *registration.SubmissionError
	if errors.As(err, &subErr) {
		switch subErr.Kind {
		case registration.KindValidation:
			return metrics.OutcomeValidation
		case registration.KindRejected:
			return metrics.OutcomeRejected
		default:
			return metrics.OutcomeNetwork
		}
	}
	return metrics.OutcomeConflict
}

func auditSubmission(ctx context.Context, action, resourceID string, err error) {
	ev := applog.AuditEvent{
		Action:       action,
		ResourceType: "account",
		ResourceID:   resourceID,
		Result:       applog.AuditSuccess,
	}
	if err != nil {
		ev.Result = applog.AuditFailure
		ev.Details = map[string]any{"outcome": outcomeOf(err)}
	}
	applog.LogAuditEvent(ctx, ev)
}

func toHTTPDraft(d *drafts.Draft) ProviderDraft {
	v := d.Wizard.Snapshot()
	errs := make(map[string]string, len(v.Errors))
	for f, msg := range v.Errors {
		errs[f.String()] = msg
	}
	out := ProviderDraft{
		ID:       d.ID,
		Step:     int(v.Step),
		StepName: v.Step.String(),
		Form: ProviderForm{
			CompanyName:                v.Form.CompanyName,
			Address:                    v.Form.Address,
			Email:                      v.Form.Email,
			Phone:                      v.Form.Phone,
			PasswordSet:                v.Form.Password != "",
			ConfirmPasswordSet:         v.Form.ConfirmPassword != "",
			Category:                   string(v.Form.Category),
			ProfessionalStatus:         string(v.Form.ProfessionalStatus),
			BusinessRegistrationNumber: v.Form.BusinessRegistrationNumber,
			Description:                v.Form.Description,
			Schedule:                   v.Form.Schedule,
			OpeningTime:                v.Form.OpeningTime,
			ClosingTime:                v.Form.ClosingTime,
			HourlyRate:                 v.Form.HourlyRate,
			AcceptsDeposit:             v.Form.AcceptsDeposit,
			PaymentMethods: PaymentMethods{
				Card:  v.Form.PaymentMethods.Card,
				Cash:  v.Form.PaymentMethods.Cash,
				Check: v.Form.PaymentMethods.Check,
			},
		},
		Errors:     errs,
		Submitting: v.Submitting,
		Done:       v.Done,
		Next:       string(d.Signals.Take()),
		CreatedAt:  d.CreatedAt,
		ExpiresAt:  d.ExpiresAt(),
	}
	if f := v.LastFailure; f != nil {
		out.LastFailure = &Failure{
			Kind:          string(f.Kind),
			Message:       f.Message,
			ServerMessage: f.ServerMessage,
		}
		if len(f.Fields) > 0 {
			out.LastFailure.Fields = make(map[string]string, len(f.Fields))
			for field, msg := range f.Fields {
				out.LastFailure.Fields[field.String()] = msg
			}
		}
	}
	return out
}
