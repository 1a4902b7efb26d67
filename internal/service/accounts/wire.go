package accounts

import (
	"fmt"
	"strings"
)

// The accounts service speaks French. Every translation between internal
// names and its JSON contract lives in this file.

const (
	registerPath = "/auth/register"
	loginPath    = "/auth/login"
)

var roleWire = map[Role]string{
	RoleProvider: "prestataire",
	RoleClient:   "client",
}

var categoryWire = map[string]string{
	"haircut":     "coiffure",
	"cleaning":    "menage",
	"cooking":     "cuisine",
	"handiwork":   "bricolage",
	"gardening":   "jardinage",
	"electricity": "electricite",
	"plumbing":    "plomberie",
	"other":       "autre",
}

var statusWire = map[string]string{
	"professional": "professionnel",
	"individual":   "particulier",
}

type wirePaymentMethods struct {
	Card  bool `json:"carte"`
	Cash  bool `json:"especes"`
	Check bool `json:"cheque"`
}

type wireProviderRegistration struct {
	Role            string             `json:"role"`
	CompanyName     string             `json:"nomEntreprise"`
	Address         string             `json:"adresse,omitempty"`
	Email           string             `json:"email"`
	Phone           string             `json:"telephone"`
	Password        string             `json:"motDePasse"`
	ConfirmPassword string             `json:"confirmPassword"`
	Description     string             `json:"description,omitempty"`
	Category        string             `json:"categorie"`
	Siret           string             `json:"siret,omitempty"`
	Schedule        string             `json:"horaires,omitempty"`
	AcceptsDeposit  bool               `json:"accepteCaution"`
	HourlyRate      string             `json:"tarifHoraire,omitempty"`
	PaymentMethods  wirePaymentMethods `json:"moyensPaiement"`
	Status          string             `json:"statut"`
	OpeningTime     string             `json:"heureOuverture"`
	ClosingTime     string             `json:"heureFermeture"`
}

type wireClientRegistration struct {
	Role     string `json:"role"`
	Name     string `json:"nom"`
	Email    string `json:"email"`
	Phone    string `json:"telephone"`
	Password string `json:"motDePasse"`
}

type wireLogin struct {
	Email    string `json:"email"`
	Password string `json:"motDePasse"`
	Role     string `json:"role,omitempty"`
}

// wireAck is the success body of /auth/register. The service has returned
// several shapes over time; all fields are optional.
type wireAck struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	User    *struct {
		ID string `json:"id"`
	} `json:"user"`
}

type wireSession struct {
	Token string `json:"token"`
	User  *struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

type wireError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func toWireProvider(reg ProviderRegistration) (wireProviderRegistration, error) {
	category, ok := categoryWire[reg.Category]
	if !ok {
		return wireProviderRegistration{}, fmt.Errorf("%w: category %q", ErrUnmappedValue, reg.Category)
	}
	status, ok := statusWire[reg.ProfessionalStatus]
	if !ok {
		return wireProviderRegistration{}, fmt.Errorf("%w: professional status %q", ErrUnmappedValue, reg.ProfessionalStatus)
	}
	return wireProviderRegistration{
		Role:            roleWire[RoleProvider],
		CompanyName:     reg.CompanyName,
		Address:         reg.Address,
		Email:           reg.Email,
		Phone:           reg.Phone,
		Password:        reg.Password,
		ConfirmPassword: reg.ConfirmPassword,
		Description:     reg.Description,
		Category:        category,
		Siret:           reg.BusinessRegistrationNumber,
		Schedule:        reg.Schedule,
		AcceptsDeposit:  reg.AcceptsDeposit,
		HourlyRate:      reg.HourlyRate,
		PaymentMethods: wirePaymentMethods{
			Card:  reg.PaymentMethods.Card,
			Cash:  reg.PaymentMethods.Cash,
			Check: reg.PaymentMethods.Check,
		},
		Status:      status,
		OpeningTime: reg.OpeningTime,
		ClosingTime: reg.ClosingTime,
	}, nil
}

func toWireClient(reg ClientRegistration) wireClientRegistration {
	return wireClientRegistration{
		Role:     roleWire[RoleClient],
		Name:     reg.Name,
		Email:    reg.Email,
		Phone:    reg.Phone,
		Password: reg.Password,
	}
}

func toWireLogin(creds Credentials) (wireLogin, error) {
	out := wireLogin{Email: creds.Email, Password: creds.Password}
	if creds.Role != "" {
		role, ok := roleWire[creds.Role]
		if !ok {
			return wireLogin{}, fmt.Errorf("%w: role %q", ErrUnmappedValue, creds.Role)
		}
		out.Role = role
	}
	return out, nil
}

// roleFromWire maps the service's role vocabulary back to Role. Unknown roles
// are passed through lowercased so callers can still log them.
func roleFromWire(s string) Role {
	s = strings.ToLower(strings.TrimSpace(s))
	for role, wire := range roleWire {
		if wire == s {
			return role
		}
	}
	return Role(s)
}

func (a wireAck) userID() string {
	switch {
	case a.UserID != "":
		return a.UserID
	case a.ID != "":
		return a.ID
	case a.User != nil:
		return a.User.ID
	}
	return ""
}

func (e wireError) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
