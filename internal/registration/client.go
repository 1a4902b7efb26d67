package registration

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	applog "github.com/janisto/provider-onboarding/internal/platform/logging"
	"github.com/janisto/provider-onboarding/internal/service/accounts"
)

// Client sign-up fields.
const (
	FieldName Field = "name"
)

// MinClientPasswordLength is lower than the provider minimum; client accounts
// have always accepted six characters.
const MinClientPasswordLength = 6

const (
	msgNameRequired        = "Le nom est requis"
	msgClientPasswordShort = "Le mot de passe doit contenir au moins 6 caractères"
)

var clientFields = []Field{FieldName, FieldEmail, FieldPhone, FieldPassword, FieldConfirmPassword}

// ClientForm is the single-page sign-up of a client account.
type ClientForm struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

// Validate checks every field and returns the failing ones.
func (f ClientForm) Validate() Errors {
	errs := Errors{}
	if strings.TrimSpace(f.Name) == "" {
		errs[FieldName] = msgNameRequired
	}
	if email := strings.TrimSpace(f.Email); email == "" {
		errs[FieldEmail] = msgEmailRequired
	} else if !emailRe.MatchString(email) {
		errs[FieldEmail] = msgEmailInvalid
	}
	if strings.TrimSpace(f.Phone) == "" {
		errs[FieldPhone] = msgPhoneRequired
	}
	switch {
	case f.Password == "":
		errs[FieldPassword] = msgPasswordRequired
	case utf8.RuneCountInString(f.Password) < MinClientPasswordLength:
		errs[FieldPassword] = msgClientPasswordShort
	}
	if f.ConfirmPassword != f.Password {
		errs[FieldConfirmPassword] = msgPasswordMismatch
	}
	return errs
}

// RegisterClient validates the form and, when it passes, creates the client
// account with a single request.
func RegisterClient(ctx context.Context, svc accounts.Service, form ClientForm) (*Success, error) {
	if errs := form.Validate(); len(errs) > 0 {
		first := ""
		for _, f := range clientFields {
			if msg, ok := errs[f]; ok {
				first = msg
				break
			}
		}
		return nil, &SubmissionError{Kind: KindValidation, Message: first, Fields: errs}
	}

	ack, err := svc.RegisterClient(ctx, accounts.ClientRegistration{
		Name:     strings.TrimSpace(form.Name),
		Email:    strings.TrimSpace(form.Email),
		Phone:    strings.TrimSpace(form.Phone),
		Password: form.Password,
	})
	if err != nil {
		failure := classifyFailure(err)
		applog.LogWarn(ctx, "client registration failed",
			zap.String("kind", string(failure.Kind)),
			zap.Error(err),
		)
		return nil, failure
	}

	success := &Success{Message: MsgClientCreated}
	if ack != nil {
		success.UserID = ack.UserID
	}
	return success, nil
}
