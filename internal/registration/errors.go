package registration

import (
	"errors"
	"fmt"
)

// Wizard errors
var (
	ErrUnknownField         = errors.New("unknown registration field")
	ErrInvalidValue         = errors.New("invalid value for registration field")
	ErrSubmissionInProgress = errors.New("registration submission already in progress")
	ErrNotOnFinalStep       = errors.New("registration can only be submitted from the last step")
	ErrCompleted            = errors.New("registration already completed")
)

// Messages shown to the user when the accounts service cannot be used.
const (
	MsgNetworkFailure   = "Impossible de vous inscrire. Veuillez réessayer plus tard."
	MsgRejectedFallback = "Une erreur est survenue."
	MsgAccountCreated   = "Votre compte a été créé ! Notre équipe va vérifier vos informations et valider votre profil sous peu."
	MsgClientCreated    = "Votre compte a été créé !"
)

// FailureKind classifies a failed submission.
type FailureKind string

const (
	// KindValidation means the form did not pass validation; nothing was sent.
	KindValidation FailureKind = "validation"
	// KindNetwork means the request never produced a response.
	KindNetwork FailureKind = "network"
	// KindRejected means the accounts service answered with a non-success status.
	KindRejected FailureKind = "rejected"
)

// SubmissionError describes why Submit did not create an account. Every kind
// is recoverable: the form is kept and Submit may be called again.
type SubmissionError struct {
	Kind FailureKind
	// Message is safe to show to the user.
	Message string
	// ServerMessage is the accounts service's own message, when it sent one.
	ServerMessage string
	// Status is the HTTP status returned by the accounts service, if any.
	Status int
	// Fields carries the per-field messages of a validation failure.
	Fields Errors
	cause  error
}

func (e *SubmissionError) Error() string {
	if e == nil {
		return "registration submission failed"
	}
	if e.cause == nil {
		return fmt.Sprintf("registration submission failed (kind=%s): %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("registration submission failed (kind=%s): %v", e.Kind, e.cause)
}

// Unwrap exposes the underlying accounts error.
func (e *SubmissionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Errors maps a field to its message. A field missing from the map is valid.
type Errors map[Field]string

// Clone returns an independent copy.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// First returns the earliest invalid field in wizard order.
func (e Errors) First() (Field, string, bool) {
	for _, f := range Fields {
		if msg, ok := e[f]; ok {
			return f, msg, true
		}
	}
	return "", "", false
}
