package registration

import (
	"context"
	"errors"
	"testing"

	"github.com/janisto/provider-onboarding/internal/service/accounts"
)

func TestClientFormValidate(t *testing.T) {
	tests := []struct {
		name  string
		form  ClientForm
		field Field
		want  string
	}{
		{"name required", ClientForm{Email: "a@b.fr", Phone: "1", Password: "secret", ConfirmPassword: "secret"}, FieldName, msgNameRequired},
		{"email invalid", ClientForm{Name: "A", Email: "nope", Phone: "1", Password: "secret", ConfirmPassword: "secret"}, FieldEmail, msgEmailInvalid},
		{"phone required", ClientForm{Name: "A", Email: "a@b.fr", Password: "secret", ConfirmPassword: "secret"}, FieldPhone, msgPhoneRequired},
		{"password short", ClientForm{Name: "A", Email: "a@b.fr", Phone: "1", Password: "12345", ConfirmPassword: "12345"}, FieldPassword, msgClientPasswordShort},
		{"mismatch", ClientForm{Name: "A", Email: "a@b.fr", Phone: "1", Password: "secret", ConfirmPassword: "secreT"}, FieldConfirmPassword, msgPasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.form.Validate()
			if errs[tt.field] != tt.want {
				t.Fatalf("expected %q on %s, got %v", tt.want, tt.field, errs)
			}
			if len(errs) != 1 {
				t.Fatalf("expected a single error, got %v", errs)
			}
		})
	}
}

func TestRegisterClientValidationSkipsNetwork(t *testing.T) {
	svc := accounts.NewMockService()
	_, err := RegisterClient(context.Background(), svc, ClientForm{Email: "x"})

	var subErr *SubmissionError
	if !errors.As(err, &subErr) || subErr.Kind != KindValidation {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if subErr.Message != msgNameRequired {
		t.Errorf("expected first error to be the name, got %q", subErr.Message)
	}
	if svc.Calls("RegisterClient") != 0 {
		t.Fatal("no request expected")
	}
}

func TestRegisterClient(t *testing.T) {
	svc := accounts.NewMockService()
	form := ClientForm{
		Name:            " Marie Curie ",
		Email:           "marie@example.fr",
		Phone:           "0102030405",
		Password:        "radium",
		ConfirmPassword: "radium",
	}

	success, err := RegisterClient(context.Background(), svc, form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if success.Message != MsgClientCreated || success.UserID == "" {
		t.Errorf("unexpected success %+v", success)
	}

	_, err = RegisterClient(context.Background(), svc, form)
	var subErr *SubmissionError
	if !errors.As(err, &subErr) || subErr.Kind != KindRejected {
		t.Fatalf("expected duplicate email rejection, got %v", err)
	}
	if subErr.Message != "Email déjà utilisé" {
		t.Errorf("unexpected message %q", subErr.Message)
	}
}
