package registration

import (
	"fmt"

	"github.com/janisto/provider-onboarding/internal/service/accounts"
)

// Category is the kind of service a provider offers.
type Category string

const (
	CategoryHaircut     Category = "haircut"
	CategoryCleaning    Category = "cleaning"
	CategoryCooking     Category = "cooking"
	CategoryHandiwork   Category = "handiwork"
	CategoryGardening   Category = "gardening"
	CategoryElectricity Category = "electricity"
	CategoryPlumbing    Category = "plumbing"
	CategoryOther       Category = "other"
)

// Categories is the closed set of accepted categories.
var Categories = []Category{
	CategoryHaircut,
	CategoryCleaning,
	CategoryCooking,
	CategoryHandiwork,
	CategoryGardening,
	CategoryElectricity,
	CategoryPlumbing,
	CategoryOther,
}

// Valid reports whether c belongs to Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ProfessionalStatus distinguishes registered businesses from individuals.
type ProfessionalStatus string

const (
	StatusProfessional ProfessionalStatus = "professional"
	StatusIndividual   ProfessionalStatus = "individual"
)

// Valid reports whether s is a known status.
func (s ProfessionalStatus) Valid() bool {
	return s == StatusProfessional || s == StatusIndividual
}

// PaymentMethods is the set of payment methods a provider accepts.
type PaymentMethods struct {
	Card  bool `json:"card"`
	Cash  bool `json:"cash"`
	Check bool `json:"check"`
}

const (
	DefaultOpeningTime = "06:00"
	DefaultClosingTime = "17:00"
)

// Form is the draft of a provider account under construction.
type Form struct {
	CompanyName                string
	Address                    string
	Email                      string
	Phone                      string
	Password                   string
	ConfirmPassword            string
	Category                   Category
	ProfessionalStatus         ProfessionalStatus
	BusinessRegistrationNumber string
	Description                string
	Schedule                   string
	OpeningTime                string
	ClosingTime                string
	HourlyRate                 string
	AcceptsDeposit             bool
	PaymentMethods             PaymentMethods
}

// NewForm returns an empty form carrying the default opening hours.
func NewForm() Form {
	return Form{
		OpeningTime: DefaultOpeningTime,
		ClosingTime: DefaultClosingTime,
	}
}

// set overwrites one field. Text fields take a string; category and status
// take their own type or a plain string.
func (f *Form) set(field Field, value any) error {
	if field == FieldAcceptsDeposit {
		v, ok := value.(bool)
		if !ok {
			return invalidValue(field, value)
		}
		f.AcceptsDeposit = v
		return nil
	}
	if field == FieldPaymentMethods {
		switch v := value.(type) {
		case PaymentMethods:
			f.PaymentMethods = v
		case *PaymentMethods:
			if v == nil {
				return invalidValue(field, value)
			}
			f.PaymentMethods = *v
		default:
			return invalidValue(field, value)
		}
		return nil
	}

	var s string
	switch v := value.(type) {
	case string:
		s = v
	case Category:
		if field != FieldCategory {
			return invalidValue(field, value)
		}
		s = string(v)
	case ProfessionalStatus:
		if field != FieldProfessionalStatus {
			return invalidValue(field, value)
		}
		s = string(v)
	default:
		return invalidValue(field, value)
	}

	ptr := f.text(field)
	if ptr == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	*ptr = s
	return nil
}

// text returns a pointer to the string backing field, or nil when field is not
// a text field.
func (f *Form) text(field Field) *string {
	switch field {
	case FieldCompanyName:
		return &f.CompanyName
	case FieldAddress:
		return &f.Address
	case FieldEmail:
		return &f.Email
	case FieldPhone:
		return &f.Phone
	case FieldPassword:
		return &f.Password
	case FieldConfirmPassword:
		return &f.ConfirmPassword
	case FieldCategory:
		return (*string)(&f.Category)
	case FieldProfessionalStatus:
		return (*string)(&f.ProfessionalStatus)
	case FieldBusinessRegistrationNumber:
		return &f.BusinessRegistrationNumber
	case FieldDescription:
		return &f.Description
	case FieldSchedule:
		return &f.Schedule
	case FieldOpeningTime:
		return &f.OpeningTime
	case FieldClosingTime:
		return &f.ClosingTime
	case FieldHourlyRate:
		return &f.HourlyRate
	default:
		return nil
	}
}

func (f *Form) hasValue(field Field) bool {
	if p := f.text(field); p != nil {
		return *p != ""
	}
	return false
}

func (f *Form) openingTime() string {
	if f.OpeningTime == "" {
		return DefaultOpeningTime
	}
	return f.OpeningTime
}

func (f *Form) closingTime() string {
	if f.ClosingTime == "" {
		return DefaultClosingTime
	}
	return f.ClosingTime
}

// registration builds the accounts payload. Only called on a validated form.
func (f *Form) registration() accounts.ProviderRegistration {
	siret := ""
	if f.ProfessionalStatus == StatusProfessional {
		siret = normalizeDigits(f.BusinessRegistrationNumber)
	}
	return accounts.ProviderRegistration{
		CompanyName:                trimmed(f.CompanyName),
		Address:                    trimmed(f.Address),
		Email:                      trimmed(f.Email),
		Phone:                      normalizeDigits(f.Phone),
		Password:                   f.Password,
		ConfirmPassword:            f.ConfirmPassword,
		Description:                trimmed(f.Description),
		Category:                   string(f.Category),
		BusinessRegistrationNumber: siret,
		Schedule:                   trimmed(f.Schedule),
		HourlyRate:                 normalizeRate(f.HourlyRate),
		AcceptsDeposit:             f.AcceptsDeposit,
		PaymentMethods: accounts.PaymentMethods{
			Card:  f.PaymentMethods.Card,
			Cash:  f.PaymentMethods.Cash,
			Check: f.PaymentMethods.Check,
		},
		ProfessionalStatus: string(f.ProfessionalStatus),
		OpeningTime:        f.openingTime(),
		ClosingTime:        f.closingTime(),
	}
}

func invalidValue(field Field, value any) error {
	return fmt.Errorf("%w: %s does not accept %T", ErrInvalidValue, field, value)
}
