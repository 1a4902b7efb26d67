package onboarding

import (
	"github.com/janisto/provider-onboarding/internal/platform/timeutil"
)

// PaymentMethods lists accepted payment methods.
type PaymentMethods struct {
	Card  bool `json:"card"  doc:"Card payments accepted"   example:"true"`
	Cash  bool `json:"cash"  doc:"Cash payments accepted"   example:"true"`
	Check bool `json:"check" doc:"Cheque payments accepted" example:"false"`
}

// ProviderForm is the draft form as shown back to the client. Passwords are
// never echoed; only whether they were entered.
type ProviderForm struct {
	CompanyName                string         `json:"companyName"                doc:"Company name"                         example:"Dupont Électricité"`
	Address                    string         `json:"address"                    doc:"Postal address"                       example:"12 rue de la Paix, Paris"`
	Email                      string         `json:"email"                      doc:"Contact email"                        example:"contact@dupont.fr"`
	Phone                      string         `json:"phone"                      doc:"Phone number"                         example:"06 12 34 56 78"`
	PasswordSet                bool           `json:"passwordSet"                doc:"Whether a password was entered"       example:"true"`
	ConfirmPasswordSet         bool           `json:"confirmPasswordSet"         doc:"Whether the confirmation was entered" example:"true"`
	Category                   string         `json:"category"                   doc:"Service category"                     example:"electricity"`
	ProfessionalStatus         string         `json:"professionalStatus"         doc:"professional or individual"           example:"professional"`
	BusinessRegistrationNumber string         `json:"businessRegistrationNumber" doc:"SIRET, professionals only"            example:"73282932000074"`
	Description                string         `json:"description"                doc:"Free description"                     example:"Dépannage 7j/7"`
	Schedule                   string         `json:"schedule"                   doc:"Free-text availability"               example:"Lundi au samedi"`
	OpeningTime                string         `json:"openingTime"                doc:"Opening time (HH:MM)"                 example:"06:00"`
	ClosingTime                string         `json:"closingTime"                doc:"Closing time (HH:MM)"                 example:"17:00"`
	HourlyRate                 string         `json:"hourlyRate"                 doc:"Hourly rate in euros"                 example:"45.50"`
	AcceptsDeposit             bool           `json:"acceptsDeposit"             doc:"Whether a deposit is taken"           example:"false"`
	PaymentMethods             PaymentMethods `json:"paymentMethods"             doc:"Accepted payment methods"`
}

// Failure describes the last unsuccessful submission.
type Failure struct {
	Kind          string            `json:"kind"                    doc:"validation, network or rejected" example:"rejected"`
	Message       string            `json:"message"                 doc:"Message to show the user"        example:"Email déjà utilisé"`
	ServerMessage string            `json:"serverMessage,omitempty" doc:"Accounts service message"        example:"Email déjà utilisé"`
	Fields        map[string]string `json:"fields,omitempty"        doc:"Per-field messages"`
}

// ProviderDraft is the state of a provider registration wizard.
type ProviderDraft struct {
	ID          string            `json:"id"                    doc:"Draft identifier"                       example:"5b1f7f0e-3a6c-4e43-9b8e-0f3c2f6a9d11"`
	Step        int               `json:"step"                  doc:"Current step (1-4)"                     example:"1"`
	StepName    string            `json:"stepName"              doc:"Current step name"                      example:"identity"`
	Form        ProviderForm      `json:"form"                  doc:"Entered values"`
	Errors      map[string]string `json:"errors"                doc:"Validation messages by field"`
	Submitting  bool              `json:"submitting"            doc:"A submission is pending"                example:"false"`
	Done        bool              `json:"done"                  doc:"The account was created"                example:"false"`
	LastFailure *Failure          `json:"lastFailure,omitempty" doc:"Last failed submission"`
	Next        string            `json:"next,omitempty"        doc:"Screen the client should navigate to"   example:"back"`
	CreatedAt   timeutil.Time     `json:"createdAt"             doc:"Creation timestamp"                     example:"2026-01-15T10:30:00.000Z"`
	ExpiresAt   timeutil.Time     `json:"expiresAt"             doc:"Expiry unless used again"               example:"2026-01-15T11:00:00.000Z"`
}

// FieldValidation is the outcome of validating a single field.
type FieldValidation struct {
	Field   string `json:"field"             doc:"Field name"                 example:"email"`
	Valid   bool   `json:"valid"             doc:"Whether the field is valid" example:"false"`
	Message string `json:"message,omitempty" doc:"Validation message"         example:"L'email est invalide"`
}

// Validation is returned by the validate operation.
type Validation struct {
	Valid  bool              `json:"valid"           doc:"Whether every checked field is valid" example:"false"`
	Fields []FieldValidation `json:"fields"          doc:"Checked fields"`
	Draft  ProviderDraft     `json:"draft"           doc:"Draft state after validation"`
}

// Registration is returned once an account was created.
type Registration struct {
	Message string `json:"message"          doc:"Confirmation for the user"      example:"Votre compte a été créé !"`
	UserID  string `json:"userId,omitempty" doc:"Account id, when provided"      example:"u-42"`
	Next    string `json:"next"             doc:"Screen to navigate to"          example:"login"`
}
