package accounts

import (
	"context"
	"errors"
	"fmt"
)

// Service errors
var (
	ErrNetwork       = errors.New("accounts service unreachable")
	ErrRejected      = errors.New("accounts service rejected the request")
	ErrDecode        = errors.New("accounts service returned an unreadable response")
	ErrUnmappedValue = errors.New("value has no wire mapping")
)

// UpstreamErrorKind classifies accounts service failures.
type UpstreamErrorKind string

const (
	// UpstreamErrorKindNetwork: no response was received.
	UpstreamErrorKindNetwork UpstreamErrorKind = "network"
	// UpstreamErrorKindRejected: a response arrived with a non-success status.
	UpstreamErrorKindRejected UpstreamErrorKind = "rejected"
	// UpstreamErrorKindDecode: a success response could not be decoded.
	UpstreamErrorKindDecode UpstreamErrorKind = "decode"
)

// UpstreamError includes response metadata for error mapping.
type UpstreamError struct {
	Kind   UpstreamErrorKind
	Status int
	// ServerMessage is the "error" field of the response body, when present.
	ServerMessage string
	cause         error
}

func (e *UpstreamError) Error() string {
	if e == nil {
		return "accounts upstream error"
	}
	if e.cause == nil {
		return fmt.Sprintf("accounts upstream error (kind=%s status=%d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("accounts upstream error (kind=%s status=%d): %v", e.Kind, e.Status, e.cause)
}

// Unwrap enables errors.Is/As against sentinel service errors.
func (e *UpstreamError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Role is the kind of account.
type Role string

const (
	RoleProvider Role = "provider"
	RoleClient   Role = "client"
)

// PaymentMethods lists accepted payment methods.
type PaymentMethods struct {
	Card  bool
	Cash  bool
	Check bool
}

// ProviderRegistration is a validated provider sign-up, in internal vocabulary.
type ProviderRegistration struct {
	CompanyName                string
	Address                    string
	Email                      string
	Phone                      string
	Password                   string
	ConfirmPassword            string
	Description                string
	Category                   string
	BusinessRegistrationNumber string
	Schedule                   string
	HourlyRate                 string
	AcceptsDeposit             bool
	PaymentMethods             PaymentMethods
	ProfessionalStatus         string
	OpeningTime                string
	ClosingTime                string
}

// ClientRegistration is a validated client sign-up.
type ClientRegistration struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Ack acknowledges a created account.
type Ack struct {
	Status  int
	Message string
	UserID  string
}

// Credentials identify an account at login.
type Credentials struct {
	Email    string
	Password string
	// Role is optional; the service infers it from the account when empty.
	Role Role
}

// Session is the result of a successful login.
type Session struct {
	Token  string
	UserID string
	Email  string
	Role   Role
}

// Service defines the accounts API operations consumed by the onboarding flows.
type Service interface {
	RegisterProvider(ctx context.Context, reg ProviderRegistration) (*Ack, error)
	RegisterClient(ctx context.Context, reg ClientRegistration) (*Ack, error)
	Login(ctx context.Context, creds Credentials) (*Session, error)
}
